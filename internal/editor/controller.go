package editor

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"blocknote/internal/domain"
)

// Key is a keystroke the controller interprets.
type Key string

const (
	KeyEnter     Key = "Enter"
	KeyBackspace Key = "Backspace"
	KeyArrowUp   Key = "ArrowUp"
	KeyArrowDown Key = "ArrowDown"
	KeyEscape    Key = "Escape"
)

// Pages is the part of the page repository the controller writes through.
type Pages interface {
	ActivePage() (domain.Page, bool)
	// UpdateActivePage reports whether edits made elsewhere were kept, so
	// the stored page differs from what was passed.
	UpdateActivePage(ctx context.Context, title string, blocks []domain.Block) bool
}

// Emitter sends events to the view.
type Emitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Controller turns view input into Document operations. Every handler
// runs mutation, save and emission under one lock, so the view never
// observes a half-applied event.
type Controller struct {
	mu       sync.Mutex
	doc      *Document
	palette  *Palette
	dragging string

	pages   Pages
	emitter Emitter
	log     zerolog.Logger
}

func NewController(pages Pages, emitter Emitter, log zerolog.Logger) *Controller {
	return &Controller{
		doc:     NewDocument(),
		palette: NewPalette(),
		pages:   pages,
		emitter: emitter,
		log:     log.With().Str("component", "editor").Logger(),
	}
}

// LoadActivePage puts the active page on the editing surface.
func (c *Controller) LoadActivePage(ctx context.Context) domain.PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// SyncExternal reloads the surface when the stored active page no longer
// matches it, e.g. after another process wrote to the store. Reports
// whether a reload happened.
func (c *Controller) SyncExternal(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	page, ok := c.pages.ActivePage()
	if !ok {
		if c.doc.PageID() == "" {
			return false
		}
		c.load(ctx)
		return true
	}
	title, blocks := c.doc.Serialize()
	// An untouched starter block is never persisted.
	same := sameBlocks(page.Blocks, blocks) || (c.doc.PlaceholderVisible() && len(page.Blocks) == 0)
	if page.ID == c.doc.PageID() && page.Title == title && same {
		return false
	}
	c.log.Info().Str("page", page.ID).Msg("active page changed outside the editor")
	c.load(ctx)
	return true
}

func (c *Controller) load(ctx context.Context) domain.PageState {
	if c.palette.IsOpen() {
		c.closePalette(ctx)
	}
	c.dragging = ""

	page, ok := c.pages.ActivePage()
	if !ok {
		c.doc.Load("", "", nil)
	} else {
		c.doc.Load(page.ID, page.Title, page.Blocks)
	}
	state := c.doc.State()
	c.emitter.Emit(ctx, domain.EventPageLoaded, state)
	c.emitter.Emit(ctx, domain.EventCursorMoved, c.doc.Cursor())
	return state
}

func sameBlocks(a, b []domain.Block) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// State returns the current surface.
func (c *Controller) State() domain.PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.State()
}

// Cursor returns where the caret was last placed.
func (c *Controller) Cursor() Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Cursor()
}

// Palette returns the palette as the view should draw it.
func (c *Controller) Palette() PaletteState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.palette.State()
}

// Dragging returns the id of the block being dragged, if any.
func (c *Controller) Dragging() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

// Key handles a keystroke in the title (blockID == "") or a block.
// It reports whether the key was consumed; unconsumed keys keep their
// default editing behaviour in the view.
func (c *Controller) Key(ctx context.Context, blockID string, key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.palette.IsOpen() {
		switch key {
		case KeyArrowDown:
			c.emitter.Emit(ctx, domain.EventPaletteHighlight, c.palette.Next())
			return true
		case KeyArrowUp:
			c.emitter.Emit(ctx, domain.EventPaletteHighlight, c.palette.Prev())
			return true
		case KeyEnter:
			c.commit(ctx, c.palette.Selected())
			return true
		case KeyEscape:
			c.closePalette(ctx)
			return true
		}
	}

	switch key {
	case KeyEnter:
		if _, err := c.doc.SplitAfter(blockID); err != nil {
			c.log.Error().Err(err).Msg("split")
			return false
		}
		c.changed(ctx)
		return true

	case KeyBackspace:
		if blockID == "" {
			return false
		}
		b, ok := c.doc.Block(blockID)
		if !ok {
			c.log.Error().Str("block", blockID).Msg("backspace on unknown block")
			return false
		}
		if !b.IsEmpty() {
			return false
		}
		if err := c.doc.MergeWithPrevious(blockID); err != nil {
			c.log.Error().Err(err).Msg("merge")
			return false
		}
		c.changed(ctx)
		if c.doc.Len() == 0 {
			c.emitter.Emit(ctx, domain.EventPlaceholderVisibility, true)
		}
		return true
	}
	return false
}

// TitleChanged records typing in the title.
func (c *Controller) TitleChanged(ctx context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.SetTitle(text)
	c.save(ctx)
}

// TextChanged records typing in a block and opens the palette when the
// text contains "/".
func (c *Controller) TextChanged(ctx context.Context, blockID, text string, at Anchor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.doc.SetText(blockID, text); err != nil {
		c.log.Error().Err(err).Msg("text changed")
		return
	}
	if c.doc.HidePlaceholder() {
		c.emitter.Emit(ctx, domain.EventPlaceholderVisibility, false)
	}
	c.save(ctx)

	switch {
	case strings.Contains(text, "/"):
		c.palette.Open(blockID, at)
		c.emitter.Emit(ctx, domain.EventPaletteOpened, c.palette.State())
	case c.palette.IsOpen() && c.palette.BlockID() == blockID:
		c.closePalette(ctx)
	}
}

// PaletteClick converts the palette's block to the clicked entry.
func (c *Controller) PaletteClick(ctx context.Context, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.palette.IsOpen() {
		return
	}
	c.commit(ctx, index)
}

// PaletteHover highlights an entry under the pointer.
func (c *Controller) PaletteHover(ctx context.Context, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.palette.IsOpen() && c.palette.Hover(index) {
		c.emitter.Emit(ctx, domain.EventPaletteHighlight, c.palette.Highlighted())
	}
}

// PaletteLeave restores the highlight to the keyboard selection.
func (c *Controller) PaletteLeave(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.palette.IsOpen() {
		return
	}
	c.palette.Leave()
	c.emitter.Emit(ctx, domain.EventPaletteHighlight, c.palette.Highlighted())
}

// ToggleTodo flips a todo checkbox.
func (c *Controller) ToggleTodo(ctx context.Context, blockID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.doc.ToggleTodo(blockID); err != nil {
		c.log.Error().Err(err).Msg("toggle todo")
		return
	}
	c.save(ctx)
	c.emitter.Emit(ctx, domain.EventBlocksChanged, c.doc.State())
}

// DragStart records the drag source. An open palette is closed first.
func (c *Controller) DragStart(ctx context.Context, blockID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.doc.Block(blockID); !ok {
		c.log.Error().Str("block", blockID).Msg("drag start on unknown block")
		return
	}
	if c.palette.IsOpen() {
		c.closePalette(ctx)
	}
	c.dragging = blockID
}

// DragOver repositions the drag source next to target as soon as the
// pointer crosses it. offsetY is measured from the target's top edge.
func (c *Controller) DragOver(ctx context.Context, targetID string, offsetY, height float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dragging == "" || c.dragging == targetID {
		return false
	}
	at := PlacementFor(offsetY, height)
	if err := c.doc.Reorder(c.dragging, targetID, at); err != nil {
		c.log.Error().Err(err).Msg("reorder")
		return false
	}
	c.save(ctx)
	c.emitter.Emit(ctx, domain.EventBlocksChanged, c.doc.State())
	return true
}

// DragEnd clears the drag source wherever the drag ended.
func (c *Controller) DragEnd(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = ""
}

func (c *Controller) commit(ctx context.Context, index int) {
	item, ok := c.palette.Item(index)
	if !ok {
		return
	}
	blockID := c.palette.BlockID()
	b, ok := c.doc.Block(blockID)
	if !ok {
		c.log.Error().Str("block", blockID).Msg("palette on unknown block")
		c.closePalette(ctx)
		return
	}
	cleaned := strings.TrimSpace(strings.Replace(b.Text(), "/", "", 1))
	if _, err := c.doc.ConvertType(blockID, item.Type, cleaned); err != nil {
		c.log.Error().Err(err).Msg("convert")
		return
	}
	c.closePalette(ctx)
	c.changed(ctx)
}

func (c *Controller) closePalette(ctx context.Context) {
	c.palette.Close()
	c.emitter.Emit(ctx, domain.EventPaletteClosed, nil)
}

// changed saves after a structural operation and tells the view where
// the blocks and the caret are now.
func (c *Controller) changed(ctx context.Context) {
	c.save(ctx)
	c.emitter.Emit(ctx, domain.EventBlocksChanged, c.doc.State())
	c.emitter.Emit(ctx, domain.EventCursorMoved, c.doc.Cursor())
}

func (c *Controller) save(ctx context.Context) {
	title, blocks := c.doc.Serialize()
	if !c.pages.UpdateActivePage(ctx, title, blocks) {
		return
	}
	page, ok := c.pages.ActivePage()
	if !ok {
		return
	}
	cursor := c.doc.Cursor()
	c.doc.Load(page.ID, page.Title, page.Blocks)
	c.doc.KeepCursor(cursor)
	if c.palette.IsOpen() {
		if _, ok := c.doc.Block(c.palette.BlockID()); !ok {
			c.closePalette(ctx)
		}
	}
	c.log.Info().Str("page", page.ID).Msg("merged edits made outside the editor")
	c.emitter.Emit(ctx, domain.EventBlocksChanged, c.doc.State())
}
