// Package mcp exposes coordinator operations as Model Context Protocol
// tools so MCP-speaking agents can submit and inspect tasks directly.
package mcp

import (
	"context"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/task"
)

// TaskRunner is the slice of the coordinator the MCP surface needs.
type TaskRunner interface {
	Submit(ctx context.Context, clientID string, req task.SubmitRequest) (*task.Task, error)
	Get(ctx context.Context, id string) (*task.Task, error)
}

// WorkerLister lists registered workers.
type WorkerLister interface {
	List(ctx context.Context) ([]agent.Worker, error)
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Addr    string
	Name    string
	Version string
}

// ServerDeps holds the service dependencies for tool handlers.
type ServerDeps struct {
	Tasks   TaskRunner
	Workers WorkerLister
}

// Server wraps an MCP server with AgentRelay tools registered.
type Server struct {
	cfg        ServerConfig
	deps       ServerDeps
	mcpServer  *mcpserver.MCPServer
	httpServer *mcpserver.StreamableHTTPServer
	tools      map[string]mcpserver.ServerTool
}

// NewServer creates an MCP server and registers all tools.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:       cfg,
		deps:      deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version),
		tools:     make(map[string]mcpserver.ServerTool),
	}
	s.registerTools()
	return s
}

// MCPServer exposes the underlying MCP server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Tools returns the registered tools keyed by name.
func (s *Server) Tools() map[string]mcpserver.ServerTool {
	return s.tools
}

// Start serves the MCP endpoint over streamable HTTP in a background
// goroutine. Errors after startup are logged, not returned.
func (s *Server) Start() error {
	s.httpServer = mcpserver.NewStreamableHTTPServer(s.mcpServer)
	go func() {
		if err := s.httpServer.Start(s.cfg.Addr); err != nil {
			slog.Error("mcp server stopped", "error", err)
		}
	}()
	slog.Info("mcp server listening", "addr", s.cfg.Addr)
	return nil
}

// Stop gracefully shuts down the MCP endpoint.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) addTool(t mcpserver.ServerTool) {
	s.tools[t.Tool.Name] = t
	s.mcpServer.AddTools(t)
}
