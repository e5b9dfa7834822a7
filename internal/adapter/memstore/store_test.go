package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/Strob0t/AgentRelay/internal/adapter/memstore"
	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/client"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/domain/task"

	"errors"
)

func TestTaskCRUDAndIsolation(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	tk := &task.Task{
		ID:     "t1",
		Query:  "q",
		Status: task.StatusPending,
		Subtasks: []task.Subtask{
			{ID: "t1-0", Type: task.TypeResearch, Status: task.StatusPending},
		},
	}
	if err := s.CreateTask(ctx, tk); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	// Mutating the original must not leak into the store.
	tk.Subtasks[0].Status = task.StatusFailed

	got, err := s.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Subtasks[0].Status != task.StatusPending {
		t.Fatal("store shared mutable state with caller")
	}

	got.Status = task.StatusCompleted
	got.UpdatedAt = time.Now()
	if err := s.UpdateTask(ctx, got); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	all, err := s.ListTasks(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListTasks: %v, n=%d", err, len(all))
	}
}

func TestGetTaskNotFound(t *testing.T) {
	s := memstore.New()
	_, err := s.GetTask(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSweepTasksRemovesOnlyOldTerminal(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	old := time.Now().Add(-2 * time.Hour)

	mk := func(id string, status task.Status, updated time.Time) {
		tk := &task.Task{ID: id, Status: status, UpdatedAt: updated}
		if err := s.CreateTask(ctx, tk); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}
	mk("old-done", task.StatusCompleted, old)
	mk("old-failed", task.StatusFailed, old)
	mk("old-running", task.StatusInProgress, old)
	mk("new-done", task.StatusCompleted, time.Now())

	removed, err := s.SweepTasks(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("SweepTasks: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, err := s.GetTask(ctx, "old-running"); err != nil {
		t.Fatal("non-terminal task must survive the sweep")
	}
	if _, err := s.GetTask(ctx, "new-done"); err != nil {
		t.Fatal("recent terminal task must survive the sweep")
	}
}

func TestUpsertWorkerOverwritesAndKeepsOrder(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	now := time.Now()

	for _, w := range []agent.Worker{
		{Name: "alpha", URL: "http://a", Capabilities: []string{"research"}, Status: agent.StatusOnline, LastSeen: now},
		{Name: "beta", URL: "http://b", Capabilities: []string{"summarize"}, Status: agent.StatusOnline, LastSeen: now},
	} {
		w := w
		if err := s.UpsertWorker(ctx, &w); err != nil {
			t.Fatalf("UpsertWorker: %v", err)
		}
	}

	// Re-register alpha with a new URL and capability set.
	if err := s.UpsertWorker(ctx, &agent.Worker{
		Name: "alpha", URL: "http://a2", Capabilities: []string{"summarize"}, Status: agent.StatusOnline, LastSeen: now,
	}); err != nil {
		t.Fatalf("UpsertWorker: %v", err)
	}

	workers, err := s.ListWorkers(ctx)
	if err != nil {
		t.Fatalf("ListWorkers: %v", err)
	}
	if len(workers) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(workers))
	}
	if workers[0].Name != "alpha" || workers[1].Name != "beta" {
		t.Fatalf("expected registration order preserved, got %v", []string{workers[0].Name, workers[1].Name})
	}
	if workers[0].URL != "http://a2" || !workers[0].HasCapability("summarize") || workers[0].HasCapability("research") {
		t.Fatalf("re-registration did not overwrite: %+v", workers[0])
	}
}

func TestMarkStaleWorkersFlagsButNeverDeletes(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()
	now := time.Now()

	if err := s.UpsertWorker(ctx, &agent.Worker{
		Name: "quiet", URL: "http://q", Capabilities: []string{"research"},
		Status: agent.StatusOnline, LastSeen: now.Add(-5 * time.Minute),
	}); err != nil {
		t.Fatalf("UpsertWorker: %v", err)
	}

	flagged, err := s.MarkStaleWorkers(ctx, now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("MarkStaleWorkers: %v", err)
	}
	if len(flagged) != 1 || flagged[0].Name != "quiet" || flagged[0].Status != agent.StatusOffline {
		t.Fatalf("expected quiet flagged offline, got %+v", flagged)
	}

	w, err := s.GetWorker(ctx, "quiet")
	if err != nil {
		t.Fatal("stale worker must not be deleted")
	}
	if w.Status != agent.StatusOffline {
		t.Fatalf("expected offline, got %q", w.Status)
	}

	// Second sweep is a no-op: already offline.
	flagged, _ = s.MarkStaleWorkers(ctx, now.Add(-time.Minute))
	if len(flagged) != 0 {
		t.Fatalf("expected no workers flagged on second sweep, got %+v", flagged)
	}
}

func TestAPIKeyLookup(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	if err := s.CreateClient(ctx, &client.Client{ID: "c1", Name: "scout"}); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if err := s.CreateAPIKey(ctx, &client.APIKey{ID: "k1", ClientID: "c1", KeyHash: "abc"}); err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}

	k, err := s.GetAPIKeyByHash(ctx, "abc")
	if err != nil {
		t.Fatalf("GetAPIKeyByHash: %v", err)
	}
	if k.ClientID != "c1" {
		t.Fatalf("expected c1, got %q", k.ClientID)
	}

	if _, err := s.GetAPIKeyByHash(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	keys, err := s.ListAPIKeys(ctx, "c1")
	if err != nil || len(keys) != 1 {
		t.Fatalf("ListAPIKeys: %v, n=%d", err, len(keys))
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	sess := &session.Session{ID: "s1", Name: "room", State: []byte(`{}`)}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	got.Participants = append(got.Participants, session.Participant{ClientID: "c1", Role: session.RoleOwner})
	if err := s.UpdateSession(ctx, got); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}

	again, _ := s.GetSession(ctx, "s1")
	if !again.HasParticipant("c1") {
		t.Fatal("expected participant c1")
	}
}
