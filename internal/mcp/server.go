package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"blocknote/internal/domain"
	"blocknote/internal/service"
)

// Server is the MCP server for blocknote.
// It exposes tools, resources, and prompts so AI agents can read and
// write pages.
type Server struct {
	mcp       *server.MCPServer
	pages     *service.PageService
	exportDir string
	log       zerolog.Logger
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Pages *service.PageService
	// ExportDir is where export_page writes files.
	ExportDir string
	Log       zerolog.Logger
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	s := &Server{
		pages:     deps.Pages,
		exportDir: deps.ExportDir,
		log:       deps.Log.With().Str("component", "mcp").Logger(),
	}

	s.mcp = server.NewMCPServer(
		"blocknote-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerPageTools()
	s.registerBlockTools()
	s.registerExportTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info().Msg("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// resolvePage returns the page named by the pageId argument, or the
// active page when none is given.
func (s *Server) resolvePage(req mcp.CallToolRequest) (domain.Page, error) {
	id := req.GetString("pageId", "")
	if id == "" {
		id = s.pages.CurrentPageID()
	}
	if id == "" {
		return domain.Page{}, fmt.Errorf("no pageId provided and no active page (use create_page or select_page first)")
	}
	return s.pages.GetPage(id)
}
