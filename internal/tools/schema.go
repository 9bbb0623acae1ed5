package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPTool converts a catalog definition into an mcp-go tool with a JSON
// schema carrying descriptions, required markers and defaults.
func MCPTool(def Definition) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}
	for _, p := range def.Parameters {
		popts := []mcp.PropertyOption{}
		if p.Description != "" {
			popts = append(popts, mcp.Description(p.Description))
		}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		if p.Default != "" {
			popts = append(popts, mcp.DefaultString(p.Default))
		}
		opts = append(opts, mcp.WithString(p.Name, popts...))
	}
	return mcp.NewTool(def.Name, opts...)
}

// MCPTools converts the whole catalog.
func MCPTools() []mcp.Tool {
	defs := List()
	out := make([]mcp.Tool, 0, len(defs))
	for _, def := range defs {
		out = append(out, MCPTool(def))
	}
	return out
}

// CallToolResult converts an envelope into the MCP result shape.
func CallToolResult(env Envelope) *mcp.CallToolResult {
	if !env.IsError {
		return mcp.NewToolResultText(env.Text)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(env.Text)},
		IsError: true,
	}
}

// Handler adapts the dispatcher to an mcp-go tool handler. Failures are
// reported in the result; the returned error is always nil.
func (d *Dispatcher) Handler() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env := d.Invoke(ctx, req.Params.Name, req.Params.Arguments)
		return CallToolResult(env), nil
	}
}

// Register adds every catalog tool to s, all served by d.
func Register(s *server.MCPServer, d *Dispatcher) {
	h := d.Handler()
	for _, tool := range MCPTools() {
		s.AddTool(tool, h)
	}
}
