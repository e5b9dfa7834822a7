package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	relayhttp "github.com/Strob0t/AgentRelay/internal/adapter/http"
	"github.com/Strob0t/AgentRelay/internal/adapter/memstore"
	"github.com/Strob0t/AgentRelay/internal/config"
	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/client"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
	"github.com/Strob0t/AgentRelay/internal/port/dispatch"
	"github.com/Strob0t/AgentRelay/internal/service"
)

// mockDispatcher returns a canned result for every subtask.
type mockDispatcher struct {
	calls []dispatch.ExecuteRequest
	fail  bool
}

func (m *mockDispatcher) Execute(_ context.Context, w *agent.Worker, req *dispatch.ExecuteRequest) (*dispatch.ExecuteResponse, error) {
	m.calls = append(m.calls, *req)
	resp := &dispatch.ExecuteResponse{
		SubtaskID: req.SubtaskID,
		Worker:    w.Name,
		Output:    "findings for: " + req.Query,
	}
	if m.fail {
		resp.Error = "executor crashed"
	}
	return resp, nil
}

func newTestRouter() chi.Router {
	store := memstore.New()
	registry := service.NewRegistryService(store, nil, nil)
	coordinator := service.NewCoordinator(store, registry, &mockDispatcher{}, nil, nil, nil)
	handlers := &relayhttp.Handlers{
		Coordinator: coordinator,
		Registry:    registry,
		Auth:        service.NewAuthService(store, &config.Auth{}),
		Sessions:    service.NewSessionService(store),
		StartedAt:   time.Now(),
	}

	r := chi.NewRouter()
	relayhttp.MountRoutes(r, handlers, nil)
	return r
}

func registerWorker(t *testing.T, r chi.Router, name string, capabilities ...string) {
	t.Helper()

	body, _ := json.Marshal(agent.RegisterRequest{
		Name:         name,
		URL:          "http://" + name + ":9100",
		Capabilities: capabilities,
	})
	req := httptest.NewRequest("POST", "/api/v1/workers/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("worker register failed: %d: %s", w.Code, w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var result struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Status != "ok" {
		t.Fatalf("expected status ok, got %q", result.Status)
	}
	if result.Components["nats"] != "disabled" {
		t.Fatalf("expected nats disabled, got %q", result.Components["nats"])
	}
}

func TestSkillManifestDefault(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest("GET", "/skill.md", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("expected markdown content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "AgentRelay") {
		t.Fatal("expected manifest to mention the service name")
	}
}

func TestRegisterClientIssuesKey(t *testing.T) {
	r := newTestRouter()

	body, _ := json.Marshal(client.RegisterRequest{Name: "crawler-7"})
	req := httptest.NewRequest("POST", "/api/v1/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var result struct {
		Client client.Client `json:"client"`
		APIKey struct {
			PlainKey string `json:"plain_key"`
		} `json:"api_key"`
	}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Client.Name != "crawler-7" {
		t.Fatalf("expected client name crawler-7, got %q", result.Client.Name)
	}
	if !strings.HasPrefix(result.APIKey.PlainKey, client.APIKeyPrefix) {
		t.Fatalf("expected key prefix %q, got %q", client.APIKeyPrefix, result.APIKey.PlainKey)
	}
}

func TestRegisterClientMissingName(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest("POST", "/api/v1/register", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateAPIKeyUnknownClient(t *testing.T) {
	r := newTestRouter()

	// No auth middleware mounted, so the caller resolves to "anonymous"
	// which is not a registered client.
	body, _ := json.Marshal(client.CreateAPIKeyRequest{Name: "ci"})
	req := httptest.NewRequest("POST", "/api/v1/keys", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSubmitTaskBasic(t *testing.T) {
	r := newTestRouter()
	registerWorker(t, r, "researcher", "research")

	body, _ := json.Marshal(task.SubmitRequest{Query: "container orchestration", Depth: "basic"})
	req := httptest.NewRequest("POST", "/api/v1/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var result task.Task
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Status != task.StatusCompleted {
		t.Fatalf("expected completed task, got %q", result.Status)
	}
	if len(result.Subtasks) != 1 {
		t.Fatalf("expected 1 subtask for basic depth, got %d", len(result.Subtasks))
	}
	if result.Subtasks[0].Status != task.StatusCompleted {
		t.Fatalf("expected completed subtask, got %q", result.Subtasks[0].Status)
	}
	if _, ok := result.Results["researcher"]; !ok {
		t.Fatal("expected result keyed by worker name")
	}
}

func TestSubmitTaskDetailedMissingSummarizer(t *testing.T) {
	r := newTestRouter()
	registerWorker(t, r, "researcher", "research")

	body, _ := json.Marshal(task.SubmitRequest{Query: "quic handshakes", Depth: "detailed"})
	req := httptest.NewRequest("POST", "/api/v1/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var result task.Task
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	// Task completes even when a subtask cannot be delegated.
	if result.Status != task.StatusCompleted {
		t.Fatalf("expected completed task, got %q", result.Status)
	}
	if len(result.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks for detailed depth, got %d", len(result.Subtasks))
	}
	if result.Subtasks[1].Status != task.StatusFailed {
		t.Fatalf("expected failed summarize subtask, got %q", result.Subtasks[1].Status)
	}
	if result.Subtasks[1].Reason != service.ReasonNoCapableAgent {
		t.Fatalf("expected reason %q, got %q", service.ReasonNoCapableAgent, result.Subtasks[1].Reason)
	}
}

func TestSubmitTaskInvalidDepth(t *testing.T) {
	r := newTestRouter()

	body, _ := json.Marshal(task.SubmitRequest{Query: "anything", Depth: "extreme"})
	req := httptest.NewRequest("POST", "/api/v1/tasks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/tasks/nonexistent", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestListTasksEmpty(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest("GET", "/api/v1/tasks", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var tasks []task.Task
	if err := json.NewDecoder(w.Body).Decode(&tasks); err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty list, got %d", len(tasks))
	}
}

func TestRegisterWorkerMissingName(t *testing.T) {
	r := newTestRouter()

	body, _ := json.Marshal(agent.RegisterRequest{URL: "http://worker:9100"})
	req := httptest.NewRequest("POST", "/api/v1/workers/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCapabilities(t *testing.T) {
	r := newTestRouter()
	registerWorker(t, r, "researcher", "research", "summarize")

	req := httptest.NewRequest("GET", "/api/v1/capabilities", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var caps map[string][]string
	if err := json.NewDecoder(w.Body).Decode(&caps); err != nil {
		t.Fatal(err)
	}
	if len(caps["research"]) != 1 || caps["research"][0] != "researcher" {
		t.Fatalf("unexpected capability map: %v", caps)
	}
}

func TestSessionLifecycle(t *testing.T) {
	r := newTestRouter()

	body, _ := json.Marshal(session.CreateRequest{Name: "joint-research"})
	req := httptest.NewRequest("POST", "/api/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var s session.Session
	if err := json.NewDecoder(w.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if len(s.Participants) != 1 || s.Participants[0].Role != session.RoleOwner {
		t.Fatalf("expected single owner participant, got %+v", s.Participants)
	}

	// Joining a session you already belong to is idempotent.
	req = httptest.NewRequest("POST", "/api/v1/sessions/"+s.ID+"/join", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on join, got %d", w.Code)
	}

	// State starts as an empty object.
	req = httptest.NewRequest("GET", "/api/v1/sessions/"+s.ID+"/state", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "{}" {
		t.Fatalf("expected empty state object, got %q", got)
	}

	// Replace the state and read it back.
	stateBody, _ := json.Marshal(session.UpdateStateRequest{State: json.RawMessage(`{"phase":"review"}`)})
	req = httptest.NewRequest("PUT", "/api/v1/sessions/"+s.ID+"/state", bytes.NewReader(stateBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/v1/sessions/"+s.ID+"/state", http.NoBody)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), `"phase":"review"`) {
		t.Fatalf("expected updated state, got %q", w.Body.String())
	}
}

func TestJoinSessionNotFound(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest("POST", "/api/v1/sessions/nope/join", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
