package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	toon "github.com/toon-format/toon-go"

	"github.com/repograde/repograde/internal/githubapi"
)

// ScanInput is the input for the scan_repository tool.
type ScanInput struct {
	Repository string `json:"repository" jsonschema:"Repository to scan, as owner/repo shorthand or a github.com URL."`
	Format     string `json:"format,omitempty" jsonschema:"Output format: toon (default) or json."`
}

func formatOutput(data any, format string) (string, error) {
	switch format {
	case "json":
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func toolResult(data any, format string) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleScanRepository(ctx context.Context, req *mcp.CallToolRequest, input ScanInput) (*mcp.CallToolResult, any, error) {
	owner, name, err := githubapi.ParseIdentifier(input.Repository)
	if err != nil {
		return toolError(err.Error())
	}

	result, err := s.scanner.Scan(ctx, owner, name)
	if err != nil {
		return toolError(err.Error())
	}

	return toolResult(result, input.Format)
}
