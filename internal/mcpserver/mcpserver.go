// Package mcpserver exposes repository scans as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/repograde/repograde/pkg/models"
)

// Scanner runs a full repository scan. Implemented by scan.Service.
type Scanner interface {
	Scan(ctx context.Context, owner, name string) (*models.AnalysisResult, error)
}

// Server wraps the MCP server and registers the repograde tools.
type Server struct {
	server  *mcp.Server
	scanner Scanner
}

// NewServer creates an MCP server with all repograde tools registered.
func NewServer(version string, scanner Scanner) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "repograde",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, scanner: scanner}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scan_repository",
		Description: describeScan(),
	}, s.handleScanRepository)
}
