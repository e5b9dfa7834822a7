package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
)

// TaskRunner is the slice of the coordinator the A2A surface needs.
type TaskRunner interface {
	Submit(ctx context.Context, clientID string, req task.SubmitRequest) (*task.Task, error)
	Get(ctx context.Context, id string) (*task.Task, error)
}

// Handler serves the A2A protocol endpoints.
type Handler struct {
	baseURL string
	runner  TaskRunner
}

// NewHandler creates an A2A handler backed by the coordinator.
func NewHandler(baseURL string, runner TaskRunner) *Handler {
	return &Handler{baseURL: baseURL, runner: runner}
}

// MountRoutes registers A2A routes on the given chi router.
// These are mounted at the root level, not under /api/v1.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/.well-known/agent.json", h.handleAgentCard)
	r.Post("/a2a/tasks", h.handleCreateTask)
	r.Get("/a2a/tasks/{id}", h.handleGetTask)
}

// taskRequest is an incoming A2A task request.
type taskRequest struct {
	Skill string         `json:"skill"`
	Input map[string]any `json:"input"`
}

// taskResponse maps a coordinator task onto the A2A response shape.
type taskResponse struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Output map[string]any `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (h *Handler) handleAgentCard(w http.ResponseWriter, _ *http.Request) {
	card := BuildAgentCard(h.baseURL)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(card)
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	query, _ := req.Input["query"].(string)
	depth, _ := req.Input["depth"].(string)
	if depth == "" {
		// A bare research skill maps to the shallowest pipeline.
		depth = string(task.DepthBasic)
		if req.Skill == "summarize" {
			depth = string(task.DepthDetailed)
		}
	}

	t, err := h.runner.Submit(r.Context(), "", task.SubmitRequest{Query: query, Depth: depth})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		slog.Error("a2a task submit failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	slog.Info("a2a task created", "id", t.ID, "skill", req.Skill)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(t))
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := h.runner.Get(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"task not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(t))
}

func toResponse(t *task.Task) taskResponse {
	resp := taskResponse{
		ID:     t.ID,
		Status: string(t.Status),
	}
	if len(t.Results) > 0 {
		resp.Output = make(map[string]any, len(t.Results))
		for worker, res := range t.Results {
			resp.Output[worker] = res.Output
		}
	}
	return resp
}
