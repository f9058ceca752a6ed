package editor

import (
	"fmt"
	"sort"
	"strings"

	"blocknote/internal/domain"
)

// StyleHint is how a block type is presented. Conversion never touches
// these; the view and the exporter derive them from the block type.
type StyleHint struct {
	Class string            `json:"class"`
	CSS   map[string]string `json:"css"`
}

var styleHints = map[domain.BlockType]StyleHint{
	domain.BlockTypeParagraph: {Class: "block-paragraph"},
	domain.BlockTypeHeading: {Class: "block-heading", CSS: map[string]string{
		"font-size":   "1.5rem",
		"font-weight": "bold",
	}},
	domain.BlockTypeTodo: {Class: "block-todo", CSS: map[string]string{
		"list-style": "none",
	}},
	domain.BlockTypeQuote: {Class: "block-quote", CSS: map[string]string{
		"border-left":  "4px solid #ccc",
		"padding-left": "10px",
		"color":        "#aaa",
	}},
	domain.BlockTypeCode: {Class: "block-code", CSS: map[string]string{
		"font-family": "monospace",
		"background":  "#333",
		"padding":     "6px",
	}},
}

// StyleFor returns the presentation hint for a block type.
func StyleFor(t domain.BlockType) StyleHint {
	if h, ok := styleHints[t]; ok {
		return h
	}
	return styleHints[domain.BlockTypeParagraph]
}

// StyleSheet renders every hint as CSS rules keyed by class.
func StyleSheet() string {
	var b strings.Builder
	for _, item := range PaletteItems {
		h := StyleFor(item.Type)
		if len(h.CSS) == 0 {
			continue
		}
		props := make([]string, 0, len(h.CSS))
		for k := range h.CSS {
			props = append(props, k)
		}
		sort.Strings(props)
		fmt.Fprintf(&b, ".%s {", h.Class)
		for _, k := range props {
			fmt.Fprintf(&b, " %s: %s;", k, h.CSS[k])
		}
		b.WriteString(" }\n")
	}
	return b.String()
}
