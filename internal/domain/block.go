package domain

import "strings"

type BlockType string

const (
	BlockTypeParagraph BlockType = "paragraph"
	BlockTypeHeading   BlockType = "heading"
	BlockTypeTodo      BlockType = "todo"
	BlockTypeQuote     BlockType = "quote"
	BlockTypeCode      BlockType = "code"
)

// Todo blocks carry their checked state inline, ahead of the text.
const (
	TodoUnchecked = "[ ] "
	TodoChecked   = "[x] "
)

// ParseBlockType maps stored or user supplied type names to a BlockType.
// Anything unrecognised is a paragraph.
func ParseBlockType(s string) BlockType {
	switch t := BlockType(strings.ToLower(strings.TrimSpace(s))); t {
	case BlockTypeHeading, BlockTypeTodo, BlockTypeQuote, BlockTypeCode:
		return t
	default:
		return BlockTypeParagraph
	}
}

// Block is one unit of page content.
type Block struct {
	ID      string    `json:"id"`
	Type    BlockType `json:"type"`
	Content string    `json:"content"`
}

// Text returns the block's text without the todo marker.
func (b Block) Text() string {
	if b.Type != BlockTypeTodo {
		return b.Content
	}
	_, text := SplitTodo(b.Content)
	return text
}

// IsEmpty reports whether the block has no visible text.
func (b Block) IsEmpty() bool {
	return strings.TrimSpace(b.Text()) == ""
}

// Checked reports the todo state. Always false for other types.
func (b Block) Checked() bool {
	if b.Type != BlockTypeTodo {
		return false
	}
	checked, _ := SplitTodo(b.Content)
	return checked
}

// TodoContent encodes a todo's checked state and text into block content.
func TodoContent(checked bool, text string) string {
	if checked {
		return TodoChecked + text
	}
	return TodoUnchecked + text
}

// SplitTodo decodes todo content. Content without a marker is unchecked.
func SplitTodo(content string) (checked bool, text string) {
	switch {
	case strings.HasPrefix(content, TodoChecked):
		return true, content[len(TodoChecked):]
	case strings.HasPrefix(content, TodoUnchecked):
		return false, content[len(TodoUnchecked):]
	case strings.HasPrefix(content, "[X] "):
		return true, content[4:]
	}
	return false, content
}
