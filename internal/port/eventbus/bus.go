// Package eventbus defines the event publishing port (interface).
package eventbus

import "context"

// Publisher is the port interface for publishing lifecycle events.
// Publishing is best-effort; the delegation path never blocks on it.
type Publisher interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close shuts down the publisher connection.
	Close() error
}

// Subject constants for lifecycle events.
const (
	SubjectTaskSubmitted    = "tasks.submitted"
	SubjectTaskCompleted    = "tasks.completed"
	SubjectSubtaskDispatch  = "tasks.subtask.dispatched"
	SubjectSubtaskResult    = "tasks.subtask.result"
	SubjectWorkerRegistered = "workers.registered"
	SubjectWorkerOffline    = "workers.offline"
)
