// Package task defines the Task and Subtask domain entities.
package task

import (
	"fmt"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain"
)

// Status represents the current state of a task or subtask.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether the status is a final state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Depth controls how many subtasks a query decomposes into.
type Depth string

const (
	DepthBasic         Depth = "basic"
	DepthDetailed      Depth = "detailed"
	DepthComprehensive Depth = "comprehensive"
)

// ValidDepth reports whether d is a known depth.
func ValidDepth(d string) bool {
	switch Depth(d) {
	case DepthBasic, DepthDetailed, DepthComprehensive:
		return true
	}
	return false
}

// Subtask types and the capabilities they require.
const (
	TypeResearch  = "research"
	TypeSummarize = "summarize"
)

// Task represents one research request and its delegated subtasks.
type Task struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id,omitempty"`
	Query     string    `json:"query"`
	Depth     Depth     `json:"depth"`
	Status    Status    `json:"status"`
	Subtasks  []Subtask `json:"subtasks"`
	// Results maps worker name to the result that worker produced.
	Results   map[string]Result `json:"results,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Subtask is one unit of delegated work. Its shape is fixed at decomposition
// time; only Status and Result change afterwards.
type Subtask struct {
	ID         string   `json:"id"` // "{taskID}-{index}"
	Type       string   `json:"type"`
	Capability string   `json:"capability"`
	Priority   int      `json:"priority"`             // lower runs first
	DependsOn  []string `json:"depends_on,omitempty"` // subtask type names
	Status     Status   `json:"status"`
	Result     *Result  `json:"result,omitempty"`
	Reason     string   `json:"reason,omitempty"` // failure reason, if any
}

// Result holds the output a worker produced for a subtask.
type Result struct {
	Worker     string    `json:"worker"`
	Output     string    `json:"output"`
	DurationMS int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

// SubtaskID builds the canonical subtask identifier.
func SubtaskID(taskID string, index int) string {
	return fmt.Sprintf("%s-%d", taskID, index)
}

// SubmitRequest holds the fields needed to submit a new task.
type SubmitRequest struct {
	Query string `json:"query"`
	Depth string `json:"depth"`
}

// Validate checks that the submit request is well-formed.
func (r *SubmitRequest) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	if r.Depth == "" {
		return fmt.Errorf("%w: depth is required", domain.ErrValidation)
	}
	if !ValidDepth(r.Depth) {
		return fmt.Errorf("%w: unknown depth %q", domain.ErrValidation, r.Depth)
	}
	return nil
}
