// Package session defines shared multi-agent sessions.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain"
)

// Role of a participant within a session.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Participant is one client joined to a session.
type Participant struct {
	ClientID string    `json:"client_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// Session is a shared state document a group of agents collaborates on.
type Session struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Participants []Participant   `json:"participants"`
	State        json.RawMessage `json:"state"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// HasParticipant reports whether the given client has joined the session.
func (s *Session) HasParticipant(clientID string) bool {
	for _, p := range s.Participants {
		if p.ClientID == clientID {
			return true
		}
	}
	return false
}

// CreateRequest is the input for creating a session.
type CreateRequest struct {
	Name  string          `json:"name"`
	State json.RawMessage `json:"state,omitempty"`
}

// Validate checks that the create request is well-formed.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	return nil
}

// UpdateStateRequest replaces the session state document.
type UpdateStateRequest struct {
	State json.RawMessage `json:"state"`
}

// Validate checks that a state document is present.
func (r *UpdateStateRequest) Validate() error {
	if len(r.State) == 0 {
		return fmt.Errorf("%w: state is required", domain.ErrValidation)
	}
	return nil
}
