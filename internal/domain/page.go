package domain

import "time"

// Page is a titled, ordered collection of blocks.
type Page struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Blocks    []Block   `json:"blocks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no block storage with p.
func (p Page) Clone() Page {
	c := p
	c.Blocks = CloneBlocks(p.Blocks)
	return c
}

// CloneBlocks copies a block slice. A nil slice yields an empty one.
func CloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return out
}

// PageSummary is one sidebar entry.
type PageSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// DisplayTitle is what the sidebar shows for the page.
func (s PageSummary) DisplayTitle() string {
	if s.Title == "" {
		return "Untitled"
	}
	return s.Title
}
