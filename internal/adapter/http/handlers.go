package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Strob0t/AgentRelay/internal/adapter/nats"
	"github.com/Strob0t/AgentRelay/internal/adapter/ws"
	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/client"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
	"github.com/Strob0t/AgentRelay/internal/middleware"
	"github.com/Strob0t/AgentRelay/internal/port/cache"
	"github.com/Strob0t/AgentRelay/internal/resilience"
	"github.com/Strob0t/AgentRelay/internal/service"
)

const (
	capabilitiesCacheKey = "capabilities"
	capabilitiesCacheTTL = 30 * time.Second
	skillCacheKey        = "skill.md"
	skillCacheTTL        = 5 * time.Minute
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Coordinator *service.Coordinator
	Registry    *service.RegistryService
	Auth        *service.AuthService
	Sessions    *service.SessionService
	Cache       cache.Cache
	Hub         *ws.Hub
	Bus         *nats.Bus
	Breaker     *resilience.Breaker
	SkillPath   string
	StartedAt   time.Time
}

// clientID resolves the authenticated client, falling back to "anonymous"
// when auth is disabled.
func clientID(r *http.Request) string {
	if id := middleware.ClientIDFrom(r.Context()); id != "" {
		return id
	}
	return "anonymous"
}

// ---------------------------------------------------------------------------
// Clients and API keys
// ---------------------------------------------------------------------------

type registerClientResponse struct {
	Client *client.Client               `json:"client"`
	APIKey *client.CreateAPIKeyResponse `json:"api_key"`
}

// RegisterClient creates a client and issues its first API key.
func (h *Handlers) RegisterClient(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[client.RegisterRequest](w, r)
	if !ok {
		return
	}

	c, key, err := h.Auth.RegisterClient(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}

	writeJSON(w, http.StatusCreated, registerClientResponse{Client: c, APIKey: key})
}

// CreateAPIKeyHandler issues an additional API key for the caller.
func (h *Handlers) CreateAPIKeyHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[client.CreateAPIKeyRequest](w, r)
	if !ok {
		return
	}

	resp, err := h.Auth.CreateAPIKey(r.Context(), clientID(r), req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ListAPIKeysHandler lists the caller's API keys. Hashes are never returned.
func (h *Handlers) ListAPIKeysHandler(w http.ResponseWriter, r *http.Request) {
	keys, err := h.Auth.ListAPIKeys(r.Context(), clientID(r))
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

// SubmitTask accepts a research query, decomposes it and delegates the
// subtasks to capable workers before responding with the finished task.
func (h *Handlers) SubmitTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[task.SubmitRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Coordinator.Submit(r.Context(), clientID(r), req)
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}

	writeJSON(w, http.StatusCreated, t)
}

// GetTask returns a task by ID.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.Coordinator.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ListTasks returns all tasks currently held in the store.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Coordinator.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// ---------------------------------------------------------------------------
// Workers
// ---------------------------------------------------------------------------

// RegisterWorker handles worker self-registration and heartbeats.
func (h *Handlers) RegisterWorker(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[agent.RegisterRequest](w, r)
	if !ok {
		return
	}

	wk, err := h.Registry.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "worker not found")
		return
	}

	// Registration changes the capability surface.
	if h.Cache != nil {
		_ = h.Cache.Delete(r.Context(), capabilitiesCacheKey)
	}

	writeJSON(w, http.StatusOK, wk)
}

// ListWorkers returns all registered workers with their status.
func (h *Handlers) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Registry.List(r.Context())
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workers)
}

// GetCapabilities returns the aggregated capability map, cached briefly to
// absorb agent probe bursts.
func (h *Handlers) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Cache != nil {
		if data, ok, err := h.Cache.Get(ctx, capabilitiesCacheKey); err == nil && ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
			return
		}
	}

	caps, err := h.Registry.Capabilities(ctx)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	if h.Cache != nil {
		if data, err := json.Marshal(caps); err == nil {
			_ = h.Cache.Set(ctx, capabilitiesCacheKey, data, capabilitiesCacheTTL)
		}
	}

	writeJSON(w, http.StatusOK, caps)
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// CreateSession creates a shared session owned by the caller.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[session.CreateRequest](w, r)
	if !ok {
		return
	}

	s, err := h.Sessions.Create(r.Context(), clientID(r), req)
	if err != nil {
		writeDomainError(w, err, "session not found")
		return
	}

	writeJSON(w, http.StatusCreated, s)
}

// JoinSession adds the caller to an existing session.
func (h *Handlers) JoinSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Join(r.Context(), urlParam(r, "id"), clientID(r))
	if err != nil {
		writeDomainError(w, err, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetSessionState returns the session's shared state blob.
func (h *Handlers) GetSessionState(w http.ResponseWriter, r *http.Request) {
	state, err := h.Sessions.GetState(r.Context(), urlParam(r, "id"), clientID(r))
	if err != nil {
		writeDomainError(w, err, "session not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(state)
}

// UpdateSessionState replaces the session's shared state blob.
func (h *Handlers) UpdateSessionState(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[session.UpdateStateRequest](w, r)
	if !ok {
		return
	}

	s, err := h.Sessions.UpdateState(r.Context(), urlParam(r, "id"), clientID(r), req)
	if err != nil {
		writeDomainError(w, err, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

type healthResponse struct {
	Status     string            `json:"status"`
	UptimeSecs int64             `json:"uptime_secs"`
	Components map[string]string `json:"components"`
}

// Health reports the coordinator's component status.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{
		"store": "ok",
	}

	switch {
	case h.Bus == nil:
		components["nats"] = "disabled"
	case h.Bus.Connected():
		components["nats"] = "connected"
	default:
		components["nats"] = "disconnected"
	}

	if h.Breaker != nil {
		components["dispatch_breaker"] = h.Breaker.State()
	}
	if h.Hub != nil {
		components["websocket"] = "ok"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		UptimeSecs: int64(time.Since(h.StartedAt).Seconds()),
		Components: components,
	})
}
