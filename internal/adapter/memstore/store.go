// Package memstore implements the store port with in-process maps.
// All coordinator state is process-local; nothing survives a restart.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/client"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
)

// Store holds all coordinator state behind a single RWMutex.
type Store struct {
	mu sync.RWMutex

	tasks    map[string]*task.Task
	workers  map[string]*agent.Worker
	order    []string // worker names in first-registration order
	clients  map[string]*client.Client
	keys     map[string]*client.APIKey // keyed by hash
	sessions map[string]*session.Session
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tasks:    make(map[string]*task.Task),
		workers:  make(map[string]*agent.Worker),
		clients:  make(map[string]*client.Client),
		keys:     make(map[string]*client.APIKey),
		sessions: make(map[string]*session.Session),
	}
}

// --- Tasks ---

// CreateTask stores a new task.
func (s *Store) CreateTask(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := cloneTask(t)
	s.tasks[t.ID] = cp
	return nil
}

// GetTask returns the task with the given id.
func (s *Store) GetTask(_ context.Context, id string) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return cloneTask(t), nil
}

// ListTasks returns all tasks in unspecified order.
func (s *Store) ListTasks(_ context.Context) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *cloneTask(t))
	}
	return out, nil
}

// UpdateTask replaces the stored task.
func (s *Store) UpdateTask(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
	}
	s.tasks[t.ID] = cloneTask(t)
	return nil
}

// SweepTasks deletes terminal tasks last updated before the cutoff.
func (s *Store) SweepTasks(_ context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, t := range s.tasks {
		if t.Status.IsTerminal() && t.UpdatedAt.Before(olderThan) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed, nil
}

// --- Workers ---

// UpsertWorker registers a worker, overwriting URL and capabilities on
// re-registration. First-registration order is preserved so capability
// matching stays deterministic.
func (s *Store) UpsertWorker(_ context.Context, w *agent.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[w.Name]; !ok {
		s.order = append(s.order, w.Name)
	}
	cp := *w
	cp.Capabilities = append([]string(nil), w.Capabilities...)
	s.workers[w.Name] = &cp
	return nil
}

// GetWorker returns the worker with the given name.
func (s *Store) GetWorker(_ context.Context, name string) (*agent.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workers[name]
	if !ok {
		return nil, fmt.Errorf("worker %s: %w", name, domain.ErrNotFound)
	}
	cp := *w
	cp.Capabilities = append([]string(nil), w.Capabilities...)
	return &cp, nil
}

// ListWorkers returns workers in first-registration order.
func (s *Store) ListWorkers(_ context.Context) ([]agent.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]agent.Worker, 0, len(s.order))
	for _, name := range s.order {
		w := s.workers[name]
		cp := *w
		cp.Capabilities = append([]string(nil), w.Capabilities...)
		out = append(out, cp)
	}
	return out, nil
}

// MarkStaleWorkers flags silent workers offline and returns the newly
// flagged entries. Workers are never removed.
func (s *Store) MarkStaleWorkers(_ context.Context, silentSince time.Time) ([]agent.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var flagged []agent.Worker
	for _, w := range s.workers {
		if w.Status == agent.StatusOnline && w.LastSeen.Before(silentSince) {
			w.Status = agent.StatusOffline
			cp := *w
			cp.Capabilities = append([]string(nil), w.Capabilities...)
			flagged = append(flagged, cp)
		}
	}
	return flagged, nil
}

// --- Clients & API keys ---

// CreateClient stores a new client.
func (s *Store) CreateClient(_ context.Context, c *client.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.clients[c.ID] = &cp
	return nil
}

// GetClient returns the client with the given id.
func (s *Store) GetClient(_ context.Context, id string) (*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

// CreateAPIKey stores a new API key by hash.
func (s *Store) CreateAPIKey(_ context.Context, k *client.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *k
	s.keys[k.KeyHash] = &cp
	return nil
}

// GetAPIKeyByHash looks up an API key by its SHA-256 hash.
func (s *Store) GetAPIKeyByHash(_ context.Context, keyHash string) (*client.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[keyHash]
	if !ok {
		return nil, fmt.Errorf("api key: %w", domain.ErrNotFound)
	}
	cp := *k
	return &cp, nil
}

// ListAPIKeys returns the keys issued to one client.
func (s *Store) ListAPIKeys(_ context.Context, clientID string) ([]client.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []client.APIKey
	for _, k := range s.keys {
		if k.ClientID == clientID {
			out = append(out, *k)
		}
	}
	return out, nil
}

// --- Sessions ---

// CreateSession stores a new session.
func (s *Store) CreateSession(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

// GetSession returns the session with the given id.
func (s *Store) GetSession(_ context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return cloneSession(sess), nil
}

// UpdateSession replaces the stored session.
func (s *Store) UpdateSession(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return fmt.Errorf("session %s: %w", sess.ID, domain.ErrNotFound)
	}
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

// cloneTask deep-copies a task so callers never share mutable state
// with the store.
func cloneTask(t *task.Task) *task.Task {
	cp := *t
	cp.Subtasks = make([]task.Subtask, len(t.Subtasks))
	for i, st := range t.Subtasks {
		cp.Subtasks[i] = st
		cp.Subtasks[i].DependsOn = append([]string(nil), st.DependsOn...)
		if st.Result != nil {
			r := *st.Result
			cp.Subtasks[i].Result = &r
		}
	}
	if t.Results != nil {
		cp.Results = make(map[string]task.Result, len(t.Results))
		for k, v := range t.Results {
			cp.Results[k] = v
		}
	}
	return &cp
}

func cloneSession(s *session.Session) *session.Session {
	cp := *s
	cp.Participants = append([]session.Participant(nil), s.Participants...)
	cp.State = append([]byte(nil), s.State...)
	return &cp
}
