package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/port/store"
)

// SessionService manages shared multi-agent sessions.
type SessionService struct {
	store store.SessionStore
}

// NewSessionService creates a session service.
func NewSessionService(s store.SessionStore) *SessionService {
	return &SessionService{store: s}
}

// Create starts a session owned by the calling client.
func (s *SessionService) Create(ctx context.Context, clientID string, req session.CreateRequest) (*session.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	state := req.State
	if len(state) == 0 {
		state = json.RawMessage(`{}`)
	}

	now := time.Now()
	sess := &session.Session{
		ID:   uuid.NewString(),
		Name: req.Name,
		Participants: []session.Participant{
			{ClientID: clientID, Role: session.RoleOwner, JoinedAt: now},
		},
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Join adds the calling client as a member. Joining twice is a no-op.
func (s *SessionService) Join(ctx context.Context, sessionID, clientID string) (*session.Session, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.HasParticipant(clientID) {
		sess.Participants = append(sess.Participants, session.Participant{
			ClientID: clientID,
			Role:     session.RoleMember,
			JoinedAt: time.Now(),
		})
		sess.UpdatedAt = time.Now()
		if err := s.store.UpdateSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}
	}
	return sess, nil
}

// GetState returns the shared state document. Only participants may read it.
func (s *SessionService) GetState(ctx context.Context, sessionID, clientID string) (json.RawMessage, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.HasParticipant(clientID) {
		return nil, fmt.Errorf("%w: not a session participant", domain.ErrForbidden)
	}
	return sess.State, nil
}

// UpdateState replaces the shared state document. Only participants may write.
func (s *SessionService) UpdateState(ctx context.Context, sessionID, clientID string, req session.UpdateStateRequest) (*session.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.HasParticipant(clientID) {
		return nil, fmt.Errorf("%w: not a session participant", domain.ErrForbidden)
	}

	sess.State = req.State
	sess.UpdatedAt = time.Now()
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return sess, nil
}
