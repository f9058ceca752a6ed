package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"blocknote/internal/domain"
	"blocknote/internal/editor"
)

func (s *Server) registerBlockTools() {
	types := []string{"paragraph", "heading", "todo", "quote", "code"}

	// ── append_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("append_block",
		mcp.WithDescription("Append a block to the end of a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("type", mcp.Description("Block type (default paragraph)"), mcp.Enum(types...)),
		mcp.WithString("content", mcp.Description("Block text"), mcp.Required()),
		mcp.WithBoolean("checked", mcp.Description("Initial state for todo blocks")),
	), s.handleAppendBlock)

	// ── update_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Replace the text of a block. Todo blocks keep their checked state."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New text"), mcp.Required()),
	), s.handleUpdateBlock)

	// ── convert_block ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("convert_block",
		mcp.WithDescription("Change a block's type in place. The block gets a new id."),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("type", mcp.Description("New block type"), mcp.Required(), mcp.Enum(types...)),
	), s.handleConvertBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block before or after another block"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockId", mcp.Description("Block to move"), mcp.Required()),
		mcp.WithString("targetId", mcp.Description("Block to move next to"), mcp.Required()),
		mcp.WithString("placement", mcp.Description("before (default) or after"), mcp.Enum("before", "after")),
	), s.handleMoveBlock)

	// ── toggle_todo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("toggle_todo",
		mcp.WithDescription("Check or uncheck a todo block"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleToggleTodo)
}

func (s *Server) handleAppendBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req)
	if err != nil {
		return nil, err
	}
	b := domain.Block{
		Type:    domain.ParseBlockType(req.GetString("type", "")),
		Content: req.GetString("content", ""),
	}
	if b.Type == domain.BlockTypeTodo {
		b.Content = domain.TodoContent(req.GetBool("checked", false), b.Content)
	}
	b, err = s.pages.AppendBlock(ctx, page.ID, b)
	if err != nil {
		return nil, fmt.Errorf("append block: %w", err)
	}
	return jsonResult(b)
}

func (s *Server) handleUpdateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID := req.GetString("blockId", "")
	content := req.GetString("content", "")
	return s.edit(ctx, req, func(d *editor.Document) (string, error) {
		return blockID, d.SetText(blockID, content)
	})
}

func (s *Server) handleConvertBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID := req.GetString("blockId", "")
	newType := domain.ParseBlockType(req.GetString("type", ""))
	return s.edit(ctx, req, func(d *editor.Document) (string, error) {
		b, ok := d.Block(blockID)
		if !ok {
			return "", fmt.Errorf("block %q: %w", blockID, domain.ErrUnknownBlock)
		}
		return d.ConvertType(blockID, newType, b.Text())
	})
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID := req.GetString("blockId", "")
	targetID := req.GetString("targetId", "")
	at := editor.Before
	if req.GetString("placement", "before") == "after" {
		at = editor.After
	}
	return s.edit(ctx, req, func(d *editor.Document) (string, error) {
		return blockID, d.Reorder(blockID, targetID, at)
	})
}

func (s *Server) handleToggleTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID := req.GetString("blockId", "")
	return s.edit(ctx, req, func(d *editor.Document) (string, error) {
		return blockID, d.ToggleTodo(blockID)
	})
}

// edit applies op to the page through the same document model the editor
// uses, then stores the result. op returns the id of the affected block.
func (s *Server) edit(ctx context.Context, req mcp.CallToolRequest, op func(d *editor.Document) (string, error)) (*mcp.CallToolResult, error) {
	if req.GetString("blockId", "") == "" {
		return nil, fmt.Errorf("blockId is required")
	}
	page, err := s.resolvePage(req)
	if err != nil {
		return nil, err
	}

	d := editor.NewDocument()
	d.Load(page.ID, page.Title, page.Blocks)
	blockID, err := op(d)
	if err != nil {
		return nil, err
	}
	page.Blocks = d.Blocks()
	if err := s.pages.UpdatePage(ctx, page); err != nil {
		return nil, err
	}

	b, _ := d.Block(blockID)
	return jsonResult(b)
}
