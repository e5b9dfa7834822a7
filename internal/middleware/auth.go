// Package middleware provides HTTP middleware for AgentRelay.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Strob0t/AgentRelay/internal/domain/client"
)

type apiKeyCtxKey struct{}

// KeyValidator validates a raw API key and returns the key record.
type KeyValidator interface {
	ValidateAPIKey(ctx context.Context, rawKey string) (*client.APIKey, error)
}

// publicPaths are exempt from authentication. Registration has to be open so
// new agents can obtain a key; discovery and health surfaces stay public so
// agents can probe before authenticating.
var publicPaths = map[string]bool{
	"/health":                  true,
	"/skill.md":                true,
	"/.well-known/agent.json":  true,
	"/api/v1/register":         true,
	"/api/v1/workers/register": true,
}

// Auth returns middleware that validates the X-API-Key header (or an
// Authorization bearer token carrying the key). When enabled is false, all
// requests pass through unauthenticated.
func Auth(validator KeyValidator, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			raw := r.Header.Get("X-API-Key")
			if raw == "" {
				// WebSocket clients cannot set headers from browsers;
				// accept ?key= on the stream endpoint.
				if r.URL.Path == "/ws" {
					raw = r.URL.Query().Get("key")
				}
				if raw == "" {
					if auth := r.Header.Get("Authorization"); auth != "" {
						raw = strings.TrimPrefix(auth, "Bearer ")
					}
				}
			}
			if raw == "" {
				http.Error(w, `{"error":"api key required"}`, http.StatusUnauthorized)
				return
			}

			key, err := validator.ValidateAPIKey(r.Context(), raw)
			if err != nil {
				http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyCtxKey{}, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyFrom extracts the validated API key from the context.
// Returns nil when the request was unauthenticated (auth disabled or public path).
func APIKeyFrom(ctx context.Context) *client.APIKey {
	k, _ := ctx.Value(apiKeyCtxKey{}).(*client.APIKey)
	return k
}

// ClientIDFrom extracts the authenticated client id, or "" when absent.
func ClientIDFrom(ctx context.Context) string {
	if k := APIKeyFrom(ctx); k != nil {
		return k.ClientID
	}
	return ""
}
