package editor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"blocknote/internal/domain"
)

// CursorEnd places the cursor after the last character.
const CursorEnd = -1

// Cursor is where the caret goes after an operation.
// An empty BlockID means the page title.
type Cursor struct {
	BlockID string `json:"blockId"`
	Offset  int    `json:"offset"`
}

// Placement says on which side of the drop target a dragged block lands.
type Placement int

const (
	Before Placement = iota
	After
)

func (p Placement) String() string {
	if p == Before {
		return "before"
	}
	return "after"
}

// PlacementFor picks Before when the pointer is in the upper half of the
// target's rendered height, After otherwise.
func PlacementFor(offsetY, height float64) Placement {
	if offsetY < height/2 {
		return Before
	}
	return After
}

// Document is the live editing surface of the active page: its title and
// ordered blocks. Blocks are addressed by id; positions are derived.
type Document struct {
	pageID      string
	title       string
	blocks      []domain.Block
	cursor      Cursor
	placeholder bool

	newID func() string
}

func NewDocument() *Document {
	return &Document{newID: uuid.NewString}
}

// Load replaces the surface with a page. A page without blocks gets one
// empty starter paragraph and shows the placeholder until the first input.
func (d *Document) Load(pageID, title string, blocks []domain.Block) {
	d.pageID = pageID
	d.title = title
	d.blocks = domain.CloneBlocks(blocks)
	for i := range d.blocks {
		if d.blocks[i].ID == "" {
			d.blocks[i].ID = d.newID()
		}
	}
	d.cursor = Cursor{BlockID: "", Offset: CursorEnd}
	d.placeholder = len(d.blocks) == 0
	if len(d.blocks) == 0 {
		starter := d.emptyParagraph()
		d.blocks = append(d.blocks, starter)
		d.cursor = Cursor{BlockID: starter.ID, Offset: 0}
	}
}

func (d *Document) PageID() string { return d.pageID }
func (d *Document) Title() string  { return d.title }
func (d *Document) Len() int       { return len(d.blocks) }
func (d *Document) Cursor() Cursor { return d.cursor }

// KeepCursor moves the cursor back to cur when its block still exists.
func (d *Document) KeepCursor(cur Cursor) {
	if cur.BlockID == "" || d.indexOf(cur.BlockID) >= 0 {
		d.cursor = cur
	}
}

// PlaceholderVisible reports whether the instructional placeholder shows.
func (d *Document) PlaceholderVisible() bool { return d.placeholder }

// HidePlaceholder reports whether the visibility changed.
func (d *Document) HidePlaceholder() bool {
	changed := d.placeholder
	d.placeholder = false
	return changed
}

// Blocks returns a copy of the block sequence.
func (d *Document) Blocks() []domain.Block {
	return domain.CloneBlocks(d.blocks)
}

// Block looks a block up by id.
func (d *Document) Block(id string) (domain.Block, bool) {
	i := d.indexOf(id)
	if i < 0 {
		return domain.Block{}, false
	}
	return d.blocks[i], true
}

// SetTitle updates the title text.
func (d *Document) SetTitle(text string) {
	d.title = text
}

// SetText updates the text of a block. For todos text is the visible
// text; a leading marker is dropped and the stored checked state kept.
func (d *Document) SetText(id, text string) error {
	i, err := d.mustIndex(id)
	if err != nil {
		return err
	}
	if d.blocks[i].Type == domain.BlockTypeTodo {
		_, text = domain.SplitTodo(text)
		d.blocks[i].Content = domain.TodoContent(d.blocks[i].Checked(), text)
		return nil
	}
	d.blocks[i].Content = text
	return nil
}

// SplitAfter inserts an empty paragraph right after the block id, or at the
// top of the page when id is empty (the title). The cursor moves to the
// start of the new block.
func (d *Document) SplitAfter(id string) (string, error) {
	at := 0
	if id != "" {
		i, err := d.mustIndex(id)
		if err != nil {
			return "", err
		}
		at = i + 1
	}
	b := d.emptyParagraph()
	d.insert(at, b)
	d.cursor = Cursor{BlockID: b.ID, Offset: 0}
	return b.ID, nil
}

// MergeWithPrevious removes an empty block and moves the cursor to the end
// of the previous block, or of the title when it was the first block.
func (d *Document) MergeWithPrevious(id string) error {
	i, err := d.mustIndex(id)
	if err != nil {
		return err
	}
	if !d.blocks[i].IsEmpty() {
		return fmt.Errorf("merge %s: %w", id, domain.ErrNotEmpty)
	}
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
	if i > 0 {
		d.cursor = Cursor{BlockID: d.blocks[i-1].ID, Offset: CursorEnd}
	} else {
		d.cursor = Cursor{BlockID: "", Offset: CursorEnd}
	}
	if len(d.blocks) == 0 {
		d.placeholder = true
	}
	return nil
}

// ConvertType replaces the block with a fresh one of newType seeded with
// cleaned, at the same position. Returns the new block id.
func (d *Document) ConvertType(id string, newType domain.BlockType, cleaned string) (string, error) {
	i, err := d.mustIndex(id)
	if err != nil {
		return "", err
	}
	b := domain.Block{ID: d.newID(), Type: newType, Content: cleaned}
	if newType == domain.BlockTypeTodo {
		b.Content = domain.TodoContent(false, cleaned)
	}
	d.blocks[i] = b
	d.cursor = Cursor{BlockID: b.ID, Offset: CursorEnd}
	return b.ID, nil
}

// Reorder moves a block to sit immediately before or after target.
// Moving a block relative to itself does nothing.
func (d *Document) Reorder(moving, target string, at Placement) error {
	from, err := d.mustIndex(moving)
	if err != nil {
		return err
	}
	if _, err := d.mustIndex(target); err != nil {
		return err
	}
	if moving == target {
		return nil
	}
	b := d.blocks[from]
	d.blocks = append(d.blocks[:from], d.blocks[from+1:]...)
	to := d.indexOf(target)
	if at == After {
		to++
	}
	d.insert(to, b)
	return nil
}

// ToggleTodo flips the checked marker of a todo block.
func (d *Document) ToggleTodo(id string) error {
	i, err := d.mustIndex(id)
	if err != nil {
		return err
	}
	b := d.blocks[i]
	if b.Type != domain.BlockTypeTodo {
		return nil
	}
	d.blocks[i].Content = domain.TodoContent(!b.Checked(), b.Text())
	return nil
}

// Serialize snapshots the surface for persistence.
func (d *Document) Serialize() (string, []domain.Block) {
	return strings.TrimSpace(d.title), domain.CloneBlocks(d.blocks)
}

// State is what the view renders.
func (d *Document) State() domain.PageState {
	return domain.PageState{
		PageID:             d.pageID,
		Title:              d.title,
		TitleEmpty:         strings.TrimSpace(d.title) == "",
		Blocks:             domain.CloneBlocks(d.blocks),
		PlaceholderVisible: d.placeholder,
	}
}

func (d *Document) emptyParagraph() domain.Block {
	return domain.Block{ID: d.newID(), Type: domain.BlockTypeParagraph}
}

func (d *Document) insert(at int, b domain.Block) {
	d.blocks = append(d.blocks, domain.Block{})
	copy(d.blocks[at+1:], d.blocks[at:])
	d.blocks[at] = b
}

func (d *Document) indexOf(id string) int {
	for i := range d.blocks {
		if d.blocks[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) mustIndex(id string) (int, error) {
	i := d.indexOf(id)
	if i < 0 {
		return -1, fmt.Errorf("block %q: %w", id, domain.ErrUnknownBlock)
	}
	return i, nil
}
