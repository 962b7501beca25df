// Package mcp exposes the review surface as MCP tools over stdio, so an
// operator's agent can check submission state, read clauses, and leave
// annotations. Drafting stays on the HTTP and CLI surfaces; these tools are
// read-mostly.
package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tmreyes/redline/internal/config"
	"github.com/tmreyes/redline/internal/draft"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"review_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"review_clauses": {
		def:     clausesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClauses },
	},
	"review_annotate": {
		def:     annotateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAnnotate },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with review tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, gen draft.Generator, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"redline",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, gen)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, gen draft.Generator, version string) error {
	s := NewServer(db, cfg, gen, version)
	return server.ServeStdio(s)
}
