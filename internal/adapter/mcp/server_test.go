package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	relaymcp "github.com/Strob0t/AgentRelay/internal/adapter/mcp"
	"github.com/Strob0t/AgentRelay/internal/adapter/memstore"
	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
	"github.com/Strob0t/AgentRelay/internal/port/dispatch"
	"github.com/Strob0t/AgentRelay/internal/service"
)

type echoDispatcher struct{}

func (echoDispatcher) Execute(_ context.Context, w *agent.Worker, req *dispatch.ExecuteRequest) (*dispatch.ExecuteResponse, error) {
	return &dispatch.ExecuteResponse{
		SubtaskID: req.SubtaskID,
		Worker:    w.Name,
		Output:    "done",
	}, nil
}

func newServerForTest(t *testing.T) *relaymcp.Server {
	t.Helper()

	store := memstore.New()
	registry := service.NewRegistryService(store, nil, nil)
	if _, err := registry.Register(context.Background(), agent.RegisterRequest{
		Name:         "researcher",
		URL:          "http://researcher:9100",
		Capabilities: []string{"research"},
	}); err != nil {
		t.Fatal(err)
	}
	coordinator := service.NewCoordinator(store, registry, echoDispatcher{}, nil, nil, nil)

	return relaymcp.NewServer(
		relaymcp.ServerConfig{Name: "test", Version: "0.1.0"},
		relaymcp.ServerDeps{Tasks: coordinator, Workers: registry},
	)
}

func TestNewServer(t *testing.T) {
	s := relaymcp.NewServer(relaymcp.ServerConfig{Name: "test", Version: "0.1.0"}, relaymcp.ServerDeps{})
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
	if s.MCPServer() == nil {
		t.Fatal("MCPServer() returned nil")
	}
}

func TestToolRegistration(t *testing.T) {
	s := newServerForTest(t)

	tools := s.Tools()
	expected := map[string]bool{
		"submit_task":  false,
		"get_task":     false,
		"list_workers": false,
	}
	for name := range tools {
		if _, ok := expected[name]; ok {
			expected[name] = true
		} else {
			t.Errorf("unexpected tool: %s", name)
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("expected tool %q not registered", name)
		}
	}
}

func TestSubmitTaskTool(t *testing.T) {
	s := newServerForTest(t)

	submit, ok := s.Tools()["submit_task"]
	if !ok {
		t.Fatal("submit_task tool not found")
	}

	result, err := submit.Handler(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      "submit_task",
			Arguments: map[string]any{"query": "raft consensus", "depth": "basic"},
		},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}

	text, ok := result.Content[0].(mcplib.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	var got task.Task
	if err := json.Unmarshal([]byte(text.Text), &got); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if got.Status != task.StatusCompleted {
		t.Fatalf("expected completed task, got %q", got.Status)
	}
}

func TestSubmitTaskToolMissingArgs(t *testing.T) {
	s := newServerForTest(t)

	submit := s.Tools()["submit_task"]
	result, err := submit.Handler(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      "submit_task",
			Arguments: map[string]any{"depth": "basic"},
		},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for missing query")
	}
}

func TestGetTaskToolNotFound(t *testing.T) {
	s := newServerForTest(t)

	get := s.Tools()["get_task"]
	result, err := get.Handler(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      "get_task",
			Arguments: map[string]any{"task_id": "missing"},
		},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for unknown task")
	}
}

func TestListWorkersTool(t *testing.T) {
	s := newServerForTest(t)

	list := s.Tools()["list_workers"]
	result, err := list.Handler(context.Background(), mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{Name: "list_workers"},
	})
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool returned error: %v", result.Content)
	}

	text, ok := result.Content[0].(mcplib.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	var workers []agent.Worker
	if err := json.Unmarshal([]byte(text.Text), &workers); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(workers) != 1 || workers[0].Name != "researcher" {
		t.Fatalf("unexpected workers: %+v", workers)
	}
}
