package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/scenedex/scenedex/internal/engine"
)

const (
	// ServerName is the MCP server name
	ServerName = "scenedex"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server exposes the engine over the Model Context Protocol. The caller
// owns the engine's lifecycle; the server only routes tool calls into it.
type Server struct {
	mcp *server.MCPServer
	svc *engine.Service
	log *zap.SugaredLogger
}

// NewServer creates an MCP server over an already-wired engine.
func NewServer(svc *engine.Service, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Server{
		mcp: server.NewMCPServer(ServerName, ServerVersion),
		svc: svc,
		log: log,
	}
	s.registerTools()
	return s
}

// Serve runs the MCP server on stdio and blocks until the client
// disconnects. Tool output is the only thing written to stdout; logs go
// to stderr.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Infow("mcp server starting", "name", ServerName, "version", ServerVersion)
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(indexProjectTool(), s.handleIndexProject)
	s.mcp.AddTool(indexFilesTool(), s.handleIndexFiles)
	s.mcp.AddTool(removeFileTool(), s.handleRemoveFile)
	s.mcp.AddTool(searchTool(), s.handleSearch)
	s.mcp.AddTool(getConnectionsTool(), s.handleGetConnections)
	s.mcp.AddTool(getCentralFilesTool(), s.handleGetCentralFiles)
	s.mcp.AddTool(getStatsTool(), s.handleGetStats)
	s.mcp.AddTool(clearIndexTool(), s.handleClearIndex)
}
