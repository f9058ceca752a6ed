package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"blocknote/internal/domain"
	"blocknote/internal/export"
)

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages in creation order. The active page is flagged."),
	), s.handleListPages)

	// ── get_page ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_page",
		mcp.WithDescription("Read a page with its blocks, as JSON or markdown"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("format",
			mcp.Description("json (default) or md"),
			mcp.Enum("json", "md"),
		),
	), s.handleGetPage)

	// ── create_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new page and make it active"),
		mcp.WithString("title", mcp.Description("Page title (optional)")),
	), s.handleCreatePage)

	// ── select_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_page",
		mcp.WithDescription("Make a page active. Tools that accept pageId default to it."),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
	), s.handleSelectPage)

	// ── set_title ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_title",
		mcp.WithDescription("Rename a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("title", mcp.Description("New title"), mcp.Required()),
	), s.handleSetTitle)
}

func (s *Server) registerExportTools() {
	// ── export_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_page",
		mcp.WithDescription("Write a page to the export directory and return the file path"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("format",
			mcp.Description("html (default) or md"),
			mcp.Enum("html", "md"),
		),
	), s.handleExportPage)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.pages.ListPages())
}

func (s *Server) handleGetPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req)
	if err != nil {
		return nil, err
	}
	if req.GetString("format", "json") == "md" {
		return textResult(export.Markdown(page.Title, page.Blocks)), nil
	}
	return jsonResult(page)
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := s.pages.CreatePage(ctx)
	if title := strings.TrimSpace(req.GetString("title", "")); title != "" {
		if err := s.pages.UpdatePage(ctx, domain.Page{ID: id, Title: title}); err != nil {
			return nil, fmt.Errorf("create page: %w", err)
		}
	}
	page, err := s.pages.GetPage(id)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.log.Info().Str("page", id).Msg("page created by agent")
	return jsonResult(page)
}

func (s *Server) handleSelectPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	if err := s.pages.SelectPage(ctx, pageID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Active page set to %s", pageID)), nil
}

func (s *Server) handleSetTitle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req)
	if err != nil {
		return nil, err
	}
	page.Title = strings.TrimSpace(req.GetString("title", ""))
	if err := s.pages.UpdatePage(ctx, page); err != nil {
		return nil, fmt.Errorf("set title: %w", err)
	}
	return textResult(fmt.Sprintf("Page %s renamed to %q", page.ID, page.Title)), nil
}

func (s *Server) handleExportPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req)
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(req.GetString("format", "html"))
	if err != nil {
		return nil, err
	}
	path, err := export.WriteFile(s.exportDir, format, page)
	if err != nil {
		return nil, fmt.Errorf("export page: %w", err)
	}
	return textResult(path), nil
}
