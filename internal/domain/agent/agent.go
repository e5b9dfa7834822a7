// Package agent defines the worker registry domain entities.
package agent

import (
	"fmt"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain"
)

// Status represents a worker's liveness as seen by the registry.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Worker is a self-registered specialist service.
// Re-registering under the same name overwrites URL and capabilities.
type Worker struct {
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	Capabilities []string  `json:"capabilities"`
	Status       Status    `json:"status"`
	LastSeen     time.Time `json:"last_seen"`
	RegisteredAt time.Time `json:"registered_at"`
}

// HasCapability reports whether the worker advertises the given capability.
func (w *Worker) HasCapability(capability string) bool {
	for _, c := range w.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Stale reports whether the worker has been silent longer than the cutoff.
func (w *Worker) Stale(now time.Time, staleAfter time.Duration) bool {
	return now.Sub(w.LastSeen) > staleAfter
}

// RegisterRequest is the payload workers POST to announce themselves.
type RegisterRequest struct {
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	Capabilities []string `json:"capabilities"`
}

// Validate checks that the registration payload is well-formed.
func (r *RegisterRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if r.URL == "" {
		return fmt.Errorf("%w: url is required", domain.ErrValidation)
	}
	if len(r.Capabilities) == 0 {
		return fmt.Errorf("%w: at least one capability is required", domain.ErrValidation)
	}
	return nil
}
