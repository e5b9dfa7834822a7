// Package store defines the state store port (interface).
package store

import (
	"context"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/client"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
)

// Store is the port interface for coordinator state.
// Implementations must be safe for concurrent use.
type Store interface {
	TaskStore
	WorkerStore
	ClientStore
	SessionStore
}

// TaskStore holds tasks and their subtask state.
type TaskStore interface {
	CreateTask(ctx context.Context, t *task.Task) error
	GetTask(ctx context.Context, id string) (*task.Task, error)
	ListTasks(ctx context.Context) ([]task.Task, error)
	UpdateTask(ctx context.Context, t *task.Task) error
	// SweepTasks deletes terminal tasks older than the cutoff and returns
	// how many were removed.
	SweepTasks(ctx context.Context, olderThan time.Time) (int, error)
}

// WorkerStore holds worker registrations in registration order.
type WorkerStore interface {
	// UpsertWorker registers a worker, overwriting any existing entry with
	// the same name. First registration order is preserved.
	UpsertWorker(ctx context.Context, w *agent.Worker) error
	GetWorker(ctx context.Context, name string) (*agent.Worker, error)
	ListWorkers(ctx context.Context) ([]agent.Worker, error)
	// MarkStaleWorkers flags workers silent since the cutoff as offline and
	// returns the newly flagged entries. Workers are never deleted.
	MarkStaleWorkers(ctx context.Context, silentSince time.Time) ([]agent.Worker, error)
}

// ClientStore holds registered clients and their API keys.
type ClientStore interface {
	CreateClient(ctx context.Context, c *client.Client) error
	GetClient(ctx context.Context, id string) (*client.Client, error)
	CreateAPIKey(ctx context.Context, k *client.APIKey) error
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*client.APIKey, error)
	ListAPIKeys(ctx context.Context, clientID string) ([]client.APIKey, error)
}

// SessionStore holds shared agent sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s *session.Session) error
	GetSession(ctx context.Context, id string) (*session.Session, error)
	UpdateSession(ctx context.Context, s *session.Session) error
}
