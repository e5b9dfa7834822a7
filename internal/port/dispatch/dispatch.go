// Package dispatch defines the worker dispatch port and the JSON wire types
// shared by the coordinator and the relay-worker binary.
package dispatch

import (
	"context"

	"github.com/Strob0t/AgentRelay/internal/domain/agent"
)

// ExecuteRequest is the body POSTed to a worker's /execute endpoint.
type ExecuteRequest struct {
	TaskID     string `json:"task_id"`
	SubtaskID  string `json:"subtask_id"`
	Capability string `json:"capability"`
	Query      string `json:"query"`
	// Context carries outputs of completed dependency subtasks, keyed by
	// subtask type.
	Context map[string]string `json:"context,omitempty"`
}

// ExecuteResponse is the body a worker returns from /execute.
type ExecuteResponse struct {
	SubtaskID string `json:"subtask_id"`
	Worker    string `json:"worker"`
	Output    string `json:"output"`
	Error     string `json:"error,omitempty"`
}

// Dispatcher delivers one subtask to one worker. A single attempt, no retry.
type Dispatcher interface {
	Execute(ctx context.Context, w *agent.Worker, req *ExecuteRequest) (*ExecuteResponse, error)
}
