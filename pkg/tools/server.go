package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// ServerName identifies this server to MCP hosts.
	ServerName = "rankpath-mcp-server"
	// Instructions is the static server description sent on initialize.
	Instructions = "RankPath SEO analysis MCP server. " +
		"Provides access to project data, crawl results, and SEO issues. " +
		"Requires the RANKPATH_API_KEY environment variable."
)

// NewServer builds an MCP server exposing every tool of the adapter.
func NewServer(a *Adapter, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithInstructions(Instructions),
		server.WithRecovery(),
	)
	a.Register(s)
	return s
}

// Register adds the adapter's tools to s.
func (a *Adapter) Register(s *server.MCPServer) {
	for _, d := range a.defs {
		s.AddTool(d.Tool(), a.handler(d.Name))
	}
}

// Tool converts the definition into its MCP declaration.
func (d Definition) Tool() mcp.Tool {
	return mcp.NewToolWithRawSchema(d.Name, d.Description, d.Schema.JSONSchema())
}

func (a *Adapter) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := a.Invoke(ctx, name, req.GetArguments())
		if err != nil {
			return nil, err
		}
		if res.IsError {
			return mcp.NewToolResultError(res.Text), nil
		}
		return mcp.NewToolResultText(res.Text), nil
	}
}
