// Package client defines registered API clients and their keys.
// Clients are typically autonomous agents, not humans.
package client

import (
	"fmt"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain"
)

// Client represents a registered API consumer.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the input for client registration.
type RegisterRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// Validate checks that the registration request has all required fields.
func (r *RegisterRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return nil
}
