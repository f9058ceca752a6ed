package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"blocknote/internal/export"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("outline_page",
		mcp.WithPromptDescription("Draft a structured page (headings, todos, notes) on a topic"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the page is about"),
			mcp.RequiredArgument(),
		),
	), s.handleOutlinePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("summarize_page",
		mcp.WithPromptDescription("Summarize an existing page"),
		mcp.WithArgument("pageId",
			mcp.ArgumentDescription("Page to summarize"),
			mcp.RequiredArgument(),
		),
	), s.handleSummarizePrompt)
}

func (s *Server) handleOutlinePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Outline a page about: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Create a page about "%s" in blocknote.

Steps:
1. Call create_page with a short title.
2. Add the structure with append_block: type "heading" for sections,
   "paragraph" for notes, "todo" for action items, "quote" for citations,
   "code" for snippets.
3. Use move_block if something ends up in the wrong place.
4. Finish with get_page format "md" and show the result.`, topic),
				},
			},
		},
	}, nil
}

func (s *Server) handleSummarizePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	pageID := req.Params.Arguments["pageId"]
	page, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Summarize page %s", page.ID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: "Summarize this page in a few sentences and list any open todos:\n\n" +
						export.Markdown(page.Title, page.Blocks),
				},
			},
		},
	}, nil
}
