// Package service contains the coordinator's application services.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Strob0t/AgentRelay/internal/config"
	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/client"
	"github.com/Strob0t/AgentRelay/internal/port/store"
)

// MasterClientID is the synthetic client id for requests authenticated with
// the operator master key.
const MasterClientID = "operator"

// AuthService issues and validates API keys.
type AuthService struct {
	store         store.ClientStore
	masterKeyHash string
}

// NewAuthService creates an auth service.
func NewAuthService(s store.ClientStore, cfg *config.Auth) *AuthService {
	return &AuthService{store: s, masterKeyHash: cfg.MasterKeyHash}
}

// RegisterClient creates a client and issues its first API key.
// The plain key is returned once and never stored.
func (s *AuthService) RegisterClient(ctx context.Context, req client.RegisterRequest) (*client.Client, *client.CreateAPIKeyResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	c := &client.Client{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Contact:   req.Contact,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, nil, fmt.Errorf("create client: %w", err)
	}

	keyResp, err := s.CreateAPIKey(ctx, c.ID, client.CreateAPIKeyRequest{Name: "default"})
	if err != nil {
		return nil, nil, err
	}
	return c, keyResp, nil
}

// CreateAPIKey generates a new API key for a client.
func (s *AuthService) CreateAPIKey(ctx context.Context, clientID string, req client.CreateAPIKeyRequest) (*client.CreateAPIKeyResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	rawKey, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	plainKey := client.APIKeyPrefix + rawKey

	var expiresAt time.Time
	if req.ExpiresIn > 0 {
		expiresAt = time.Now().Add(time.Duration(req.ExpiresIn) * time.Second)
	}

	key := &client.APIKey{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Name:      req.Name,
		Prefix:    plainKey[:12], // "ark_" + 8 chars
		KeyHash:   hashSHA256(plainKey),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, fmt.Errorf("store api key: %w", err)
	}

	return &client.CreateAPIKeyResponse{APIKey: *key, PlainKey: plainKey}, nil
}

// ListAPIKeys returns the keys issued to a client. Hashes are never exposed.
func (s *AuthService) ListAPIKeys(ctx context.Context, clientID string) ([]client.APIKey, error) {
	return s.store.ListAPIKeys(ctx, clientID)
}

// ValidateAPIKey looks up an API key by its SHA-256 hash. The operator
// master key, when configured, is checked via its bcrypt hash and yields a
// synthetic key record.
func (s *AuthService) ValidateAPIKey(ctx context.Context, rawKey string) (*client.APIKey, error) {
	if s.masterKeyHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.masterKeyHash), []byte(rawKey)); err == nil {
			return &client.APIKey{ID: "master", ClientID: MasterClientID, Name: "master"}, nil
		}
	}

	key, err := s.store.GetAPIKeyByHash(ctx, hashSHA256(rawKey))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid api key", domain.ErrUnauthorized)
	}
	if key.Expired(time.Now()) {
		return nil, fmt.Errorf("%w: api key expired", domain.ErrUnauthorized)
	}
	return key, nil
}

func hashSHA256(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

func generateRandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
