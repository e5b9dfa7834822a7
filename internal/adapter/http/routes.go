package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/AgentRelay/internal/port/a2a"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers, a2aHandler *a2a.Handler) {
	// Agent-facing service surface (public)
	r.Get("/health", h.Health)
	r.Get("/skill.md", h.SkillManifest)
	if a2aHandler != nil {
		a2aHandler.MountRoutes(r)
	}
	if h.Hub != nil {
		r.Get("/ws", h.Hub.HandleWS)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Client registration and API keys
		r.Post("/register", h.RegisterClient)
		r.Post("/keys", h.CreateAPIKeyHandler)
		r.Get("/keys", h.ListAPIKeysHandler)

		// Tasks
		r.Post("/tasks", h.SubmitTask)
		r.Get("/tasks", h.ListTasks)
		r.Get("/tasks/{id}", h.GetTask)

		// Workers
		r.Post("/workers/register", h.RegisterWorker)
		r.Get("/workers", h.ListWorkers)
		r.Get("/capabilities", h.GetCapabilities)

		// Sessions
		r.Post("/sessions", h.CreateSession)
		r.Post("/sessions/{id}/join", h.JoinSession)
		r.Get("/sessions/{id}/state", h.GetSessionState)
		r.Put("/sessions/{id}/state", h.UpdateSessionState)
	})
}
