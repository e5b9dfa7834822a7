//go:build integration

package integration_test

import (
	"net/http"
	"slices"
	"testing"

	"github.com/Strob0t/AgentRelay/internal/domain/agent"
)

func TestListWorkers(t *testing.T) {
	var workers []agent.Worker
	if status := doJSON(t, http.MethodGet, "/api/v1/workers", nil, &workers); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	i := slices.IndexFunc(workers, func(w agent.Worker) bool { return w.Name == workerName })
	if i < 0 {
		t.Fatalf("worker %q not listed in %+v", workerName, workers)
	}
	if workers[i].Status != agent.StatusOnline {
		t.Errorf("expected online worker, got %q", workers[i].Status)
	}
}

func TestCapabilities(t *testing.T) {
	var caps map[string][]string
	if status := doJSON(t, http.MethodGet, "/api/v1/capabilities", nil, &caps); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	for _, c := range []string{"research", "summarize"} {
		if !slices.Contains(caps[c], workerName) {
			t.Errorf("expected %q to advertise %s, got %v", workerName, c, caps[c])
		}
	}
}
