package editor

import "blocknote/internal/domain"

// PaletteItem is one entry of the "/" command palette.
type PaletteItem struct {
	Type  domain.BlockType `json:"type"`
	Label string           `json:"label"`
	Icon  string           `json:"icon"`
}

// PaletteItems is the fixed, ordered list the palette offers.
var PaletteItems = []PaletteItem{
	{Type: domain.BlockTypeParagraph, Label: "Paragraph", Icon: "📝"},
	{Type: domain.BlockTypeHeading, Label: "Heading", Icon: "🔠"},
	{Type: domain.BlockTypeTodo, Label: "To-do", Icon: "☑️"},
	{Type: domain.BlockTypeQuote, Label: "Quote", Icon: "💬"},
	{Type: domain.BlockTypeCode, Label: "Code", Icon: "💻"},
}

// Anchor is the screen position the palette is rendered at,
// just below the block that triggered it.
type Anchor struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// Palette is the ephemeral block-type menu. At most one is open.
type Palette struct {
	open     bool
	blockID  string
	anchor   Anchor
	selected int
	hovered  int
}

// PaletteState is the palette as sent to the view.
type PaletteState struct {
	Open        bool          `json:"open"`
	BlockID     string        `json:"blockId"`
	Anchor      Anchor        `json:"anchor"`
	Items       []PaletteItem `json:"items"`
	Selected    int           `json:"selected"`
	Highlighted int           `json:"highlighted"`
}

func NewPalette() *Palette {
	return &Palette{hovered: -1}
}

// Open shows the palette for a block, replacing any open instance.
func (p *Palette) Open(blockID string, at Anchor) {
	p.open = true
	p.blockID = blockID
	p.anchor = at
	p.selected = 0
	p.hovered = -1
}

func (p *Palette) Close() {
	p.open = false
	p.blockID = ""
	p.selected = 0
	p.hovered = -1
}

func (p *Palette) IsOpen() bool    { return p.open }
func (p *Palette) BlockID() string { return p.blockID }
func (p *Palette) Selected() int   { return p.selected }
func (p *Palette) Len() int        { return len(PaletteItems) }

// Next advances the selection, wrapping to the first item.
func (p *Palette) Next() int {
	p.selected = (p.selected + 1) % p.Len()
	return p.selected
}

// Prev moves the selection back, wrapping to the last item.
func (p *Palette) Prev() int {
	p.selected = (p.selected - 1 + p.Len()) % p.Len()
	return p.selected
}

// Hover highlights an entry under the pointer without selecting it.
func (p *Palette) Hover(i int) bool {
	if i < 0 || i >= p.Len() {
		return false
	}
	p.hovered = i
	return true
}

// Leave drops the pointer highlight, falling back to the selection.
func (p *Palette) Leave() {
	p.hovered = -1
}

// Highlighted is the entry drawn as active.
func (p *Palette) Highlighted() int {
	if p.hovered >= 0 {
		return p.hovered
	}
	return p.selected
}

func (p *Palette) Item(i int) (PaletteItem, bool) {
	if i < 0 || i >= p.Len() {
		return PaletteItem{}, false
	}
	return PaletteItems[i], true
}

func (p *Palette) State() PaletteState {
	items := make([]PaletteItem, len(PaletteItems))
	copy(items, PaletteItems)
	return PaletteState{
		Open:        p.open,
		BlockID:     p.blockID,
		Anchor:      p.anchor,
		Items:       items,
		Selected:    p.selected,
		Highlighted: p.Highlighted(),
	}
}
