package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"blocknote/internal/export"
)

const (
	pagesURI      = "blocknote://pages"
	pageURIPrefix = "blocknote://page/"
)

func (s *Server) registerResources() {
	// ── blocknote://pages ──────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		pagesURI,
		"All Pages",
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	// ── blocknote://page/{pageId} ──────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageURIPrefix+"{pageId}",
			"Page as Markdown",
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handlePageResource,
	)
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(s.pages.ListPages(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      pagesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := extractPageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}
	page, err := s.pages.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     export.Markdown(page.Title, page.Blocks),
		},
	}, nil
}

// extractPageIDFromURI extracts the page ID from "blocknote://page/{id}".
func extractPageIDFromURI(uri string) string {
	id, ok := strings.CutPrefix(uri, pageURIPrefix)
	if !ok {
		return ""
	}
	id, _, _ = strings.Cut(id, "/")
	return id
}
