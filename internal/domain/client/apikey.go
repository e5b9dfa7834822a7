package client

import (
	"fmt"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain"
)

// APIKeyPrefix is prepended to generated API keys for identification.
const APIKeyPrefix = "ark_"

// APIKey represents a stored API key linked to a client.
type APIKey struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name"`
	Prefix    string    `json:"prefix"` // first 12 chars for display
	KeyHash   string    `json:"-"`      // SHA-256 hash, never serialized
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the key has an expiry in the past.
func (k *APIKey) Expired(now time.Time) bool {
	return !k.ExpiresAt.IsZero() && now.After(k.ExpiresAt)
}

// CreateAPIKeyRequest is the input for creating an additional API key.
type CreateAPIKeyRequest struct {
	Name      string `json:"name"`
	ExpiresIn int    `json:"expires_in,omitempty"` // seconds; 0 = no expiry
}

// Validate checks that the CreateAPIKeyRequest has all required fields.
func (r *CreateAPIKeyRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if r.ExpiresIn < 0 {
		return fmt.Errorf("%w: expires_in must not be negative", domain.ErrValidation)
	}
	return nil
}

// CreateAPIKeyResponse is returned after creating an API key.
// The PlainKey is only shown once at creation time.
type CreateAPIKeyResponse struct {
	APIKey   APIKey `json:"api_key"`
	PlainKey string `json:"plain_key"` // only returned once
}
