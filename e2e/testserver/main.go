// Package main implements a minimal MCP stdio server for E2E testing.
// Each tool echoes back the received arguments as JSON text content, so
// tests can assert exactly which arguments reached the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	s := server.NewMCPServer("echo-args", "1.0.0")

	// echo_params: scalar flags of every supported type plus an enum
	s.AddTool(
		mcp.NewTool("echo_params",
			mcp.WithDescription("Echoes all received arguments as JSON"),
			mcp.WithString("org_id", mcp.Description("Organization ID")),
			mcp.WithString("query", mcp.Description("Search query")),
			mcp.WithString("sort", mcp.Description("Sort direction"), mcp.Enum("asc", "desc")),
			mcp.WithNumber("limit", mcp.Description("Maximum results")),
			mcp.WithBoolean("archived", mcp.Description("Include archived entries")),
		),
		echoHandler,
	)

	// create_item: has a required property
	s.AddTool(
		mcp.NewTool("create_item",
			mcp.WithDescription("Creates an item (echoes arguments)"),
			mcp.WithString("org_id", mcp.Description("Organization ID")),
			mcp.WithString("project_id", mcp.Description("Project ID")),
			mcp.WithString("title", mcp.Description("Item title"), mcp.Required()),
		),
		echoHandler,
	)

	// list_items: third tool so per-tool default isolation is observable
	s.AddTool(
		mcp.NewTool("list_items",
			mcp.WithDescription("Lists items (echoes arguments)"),
			mcp.WithString("org_id", mcp.Description("Organization ID")),
			mcp.WithString("query", mcp.Description("Search query")),
		),
		echoHandler,
	)

	if err := server.ServeStdio(s); err != nil {
		fmt.Printf("server error: %v\n", err)
	}
}

func echoHandler(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal args: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(data),
			},
		},
	}, nil
}
