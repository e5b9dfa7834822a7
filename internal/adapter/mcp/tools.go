package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/AgentRelay/internal/domain/task"
)

// mcpClientID attributes MCP-submitted tasks in the task store.
const mcpClientID = "mcp"

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.addTool(s.submitTaskTool())
	s.addTool(s.getTaskTool())
	s.addTool(s.listWorkersTool())
}

func (s *Server) submitTaskTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("submit_task",
		mcplib.WithDescription("Submit a research query; it is decomposed into subtasks and delegated to specialist workers"),
		mcplib.WithString("query",
			mcplib.Required(),
			mcplib.Description("The research query to process"),
		),
		mcplib.WithString("depth",
			mcplib.Required(),
			mcplib.Description("Research depth: basic, detailed or comprehensive"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleSubmitTask,
	}
}

func (s *Server) getTaskTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("get_task",
		mcplib.WithDescription("Get a task by ID, including subtask statuses and worker results"),
		mcplib.WithString("task_id",
			mcplib.Required(),
			mcplib.Description("The task ID to look up"),
		),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleGetTask,
	}
}

func (s *Server) listWorkersTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_workers",
		mcplib.WithDescription("List registered workers with their capabilities and online status"),
	)
	return mcpserver.ServerTool{
		Tool:    tool,
		Handler: s.handleListWorkers,
	}
}

func (s *Server) handleSubmitTask(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task runner not configured"), nil
	}
	args := req.GetArguments()
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcplib.NewToolResultError("query is required"), nil
	}
	depth, ok := args["depth"].(string)
	if !ok || depth == "" {
		return mcplib.NewToolResultError("depth is required"), nil
	}

	t, err := s.deps.Tasks.Submit(ctx, mcpClientID, task.SubmitRequest{Query: query, Depth: depth})
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to submit task", err), nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal task", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetTask(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tasks == nil {
		return mcplib.NewToolResultError("task runner not configured"), nil
	}
	args := req.GetArguments()
	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcplib.NewToolResultError("task_id is required"), nil
	}

	t, err := s.deps.Tasks.Get(ctx, taskID)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr(
			fmt.Sprintf("failed to get task %s", taskID), err,
		), nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal task", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}

func (s *Server) handleListWorkers(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Workers == nil {
		return mcplib.NewToolResultError("worker lister not configured"), nil
	}
	workers, err := s.deps.Workers.List(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list workers", err), nil
	}
	data, err := json.Marshal(workers)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal workers", err), nil
	}
	return mcplib.NewToolResultText(string(data)), nil
}
