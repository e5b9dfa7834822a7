package worker

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/AgentRelay/internal/port/dispatch"
)

// Server serves the worker-side HTTP surface the coordinator probes and
// dispatches to.
type Server struct {
	name      string
	executors map[string]Executor
	startedAt time.Time
}

// NewServer creates a worker server with the given executors.
func NewServer(name string, executors []Executor) *Server {
	m := make(map[string]Executor, len(executors))
	for _, e := range executors {
		m[e.Capability()] = e
	}
	return &Server{
		name:      name,
		executors: m,
		startedAt: time.Now(),
	}
}

// Capabilities returns the capability names this worker advertises.
func (s *Server) Capabilities() []string {
	out := make([]string, 0, len(s.executors))
	for c := range s.executors {
		out = append(out, c)
	}
	return out
}

// Router builds the worker's HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/execute", s.handleExecute)
	r.Get("/capabilities", s.handleCapabilities)
	r.Get("/health", s.handleHealth)
	r.Get("/skill.md", s.handleSkill)
	return r
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req dispatch.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp := dispatch.ExecuteResponse{
		SubtaskID: req.SubtaskID,
		Worker:    s.name,
	}

	exec, ok := s.executors[req.Capability]
	if !ok {
		resp.Error = fmt.Sprintf("capability %q not supported", req.Capability)
	} else {
		output, err := exec.Execute(r.Context(), req.Query, req.Context)
		if err != nil {
			slog.Warn("execute failed", "subtask", req.SubtaskID, "capability", req.Capability, "error", err)
			resp.Error = err.Error()
		} else {
			resp.Output = output
		}
	}

	slog.Info("subtask executed",
		"subtask", req.SubtaskID,
		"capability", req.Capability,
		"failed", resp.Error != "",
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"worker":       s.name,
		"capabilities": s.Capabilities(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"worker":      s.name,
		"uptime_secs": int64(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleSkill(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "# %s\n\nSpecialist worker for AgentRelay.\n\n## Capabilities\n\n", s.name)
	for _, c := range s.Capabilities() {
		fmt.Fprintf(w, "- `%s`\n", c)
	}
	fmt.Fprint(w, "\nSubtasks are dispatched by the coordinator via `POST /execute`.\n")
}
