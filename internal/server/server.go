// Package server exposes definition lookup as MCP tools over stdio. It is a
// long-lived host for the engine, so the content cache stays warm between
// requests.
package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates the MCP server and registers its tools. Protocol concerns stay
// here; lookups are delegated to handler.
func New(handler *Handler, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"sassdef",
		version,
		server.WithToolCapabilities(false),
	)

	definitionTool := mcp.NewTool("find_definition",
		mcp.WithDescription("Find where an SCSS/Sass variable, mixin or function is declared. Pass either a query such as \"$primary\", \"@include center\" or \"rem(4px)\", or a 0-based line and column in file."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Stylesheet containing the reference, absolute or relative to the workspace root"),
		),
		mcp.WithString("query",
			mcp.Description("Raw reference text; takes precedence over line and column"),
		),
		mcp.WithNumber("line",
			mcp.Description("0-based line of the reference"),
		),
		mcp.WithNumber("column",
			mcp.Description("0-based byte column of the reference"),
		),
	)

	hoverTool := mcp.NewTool("hover",
		mcp.WithDescription("Return the go-to-definition hint when the position rests on a variable."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Stylesheet, absolute or relative to the workspace root"),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("0-based line"),
		),
		mcp.WithNumber("column",
			mcp.Required(),
			mcp.Description("0-based byte column"),
		),
	)

	s.AddTool(definitionTool, handler.FindDefinition)
	s.AddTool(hoverTool, handler.Hover)

	return s
}
