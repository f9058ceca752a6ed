// Package export renders pages as Markdown and standalone HTML.
package export

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"blocknote/internal/domain"
	"blocknote/internal/editor"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "md", "markdown" and "html". Empty means HTML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html", "htm":
		return FormatHTML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Ext is the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return ".html"
}

// ─── Markdown ──────────────────────────────────────────────

// Markdown renders a page. Empty blocks are skipped.
func Markdown(title string, blocks []domain.Block) string {
	var b strings.Builder
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintf(&b, "# %s\n", title)

	for _, blk := range blocks {
		if blk.IsEmpty() {
			continue
		}
		b.WriteString("\n")
		text := blk.Text()
		switch blk.Type {
		case domain.BlockTypeHeading:
			fmt.Fprintf(&b, "## %s\n", oneLine(text))
		case domain.BlockTypeTodo:
			mark := " "
			if blk.Checked() {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, oneLine(text))
		case domain.BlockTypeQuote:
			for _, line := range strings.Split(text, "\n") {
				fmt.Fprintf(&b, "> %s\n", line)
			}
		case domain.BlockTypeCode:
			fence := "```"
			for strings.Contains(text, fence) {
				fence += "`"
			}
			fmt.Fprintf(&b, "%s\n%s\n%s\n", fence, strings.TrimRight(text, "\n"), fence)
		default:
			fmt.Fprintf(&b, "%s\n", text)
		}
	}
	return b.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ─── HTML ──────────────────────────────────────────────────

// Without html.WithUnsafe goldmark escapes raw HTML typed into blocks.
var renderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
	),
)

var blockTags = regexp.MustCompile(`<(h2|blockquote|pre|li)([ >])`)

var tagTypes = map[string]domain.BlockType{
	"h2":         domain.BlockTypeHeading,
	"blockquote": domain.BlockTypeQuote,
	"pre":        domain.BlockTypeCode,
	"li":         domain.BlockTypeTodo,
}

// HTML renders a page as a standalone document carrying the block style
// sheet, so the file looks like the editor without the app.
func HTML(title string, blocks []domain.Block) (string, error) {
	var body bytes.Buffer
	if err := renderer.Convert([]byte(Markdown(title, blocks)), &body); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	name := strings.TrimSpace(title)
	if name == "" {
		name = "Untitled"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(name))
	b.WriteString("<style>\nbody { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }\n")
	b.WriteString(editor.StyleSheet())
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(addClasses(body.String()))
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

// addClasses tags the rendered elements with the editor's block classes.
func addClasses(s string) string {
	return blockTags.ReplaceAllStringFunc(s, func(m string) string {
		sub := blockTags.FindStringSubmatch(m)
		class := editor.StyleFor(tagTypes[sub[1]]).Class
		return fmt.Sprintf("<%s class=%q%s", sub[1], class, sub[2])
	})
}

// Render produces the page in format f.
func Render(f Format, page domain.Page) ([]byte, error) {
	if f == FormatMarkdown {
		return []byte(Markdown(page.Title, page.Blocks)), nil
	}
	out, err := HTML(page.Title, page.Blocks)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// ─── Files ─────────────────────────────────────────────────

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a title into a file name stem. Falls back to fallback
// (usually the page id) when the title has no usable characters.
func Slug(title, fallback string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	s = strings.Trim(s, "-")
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	if s == "" {
		s = fallback
	}
	if s == "" {
		s = "untitled"
	}
	return s
}

// WriteFile renders page into dir, named after its title, and returns the
// written path.
func WriteFile(dir string, f Format, page domain.Page) (string, error) {
	return WriteNamed(dir, Slug(page.Title, page.ID), f, page)
}

// WriteNamed is WriteFile with an explicit file name stem.
func WriteNamed(dir, name string, f Format, page domain.Page) (string, error) {
	data, err := Render(f, page)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, name+f.Ext())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
