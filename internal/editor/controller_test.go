package editor_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blocknote/internal/domain"
	"blocknote/internal/editor"
	"blocknote/internal/service"
	"blocknote/internal/storage"
)

type fixture struct {
	ctx     context.Context
	kv      *storage.MemoryStore
	pages   *service.PageService
	events  *service.MockEmitter
	editor  *editor.Controller
	pageID  string
	initial domain.PageState
}

// newFixture creates a page holding blocks and loads it into a controller.
func newFixture(t *testing.T, title string, blocks ...domain.Block) *fixture {
	t.Helper()
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	events := &service.MockEmitter{}
	pages := service.NewPageService(kv, events, zerolog.Nop())
	pages.Load(ctx)
	id := pages.CreatePage(ctx)
	if title != "" || len(blocks) > 0 {
		pages.UpdateActivePage(ctx, title, blocks)
	}

	c := editor.NewController(pages, events, zerolog.Nop())
	state := c.LoadActivePage(ctx)
	events.Reset()
	return &fixture{ctx: ctx, kv: kv, pages: pages, events: events, editor: c, pageID: id, initial: state}
}

func (f *fixture) stored(t *testing.T) domain.Page {
	t.Helper()
	page, err := f.pages.GetPage(f.pageID)
	require.NoError(t, err)
	return page
}

// ─── Scenarios ─────────────────────────────────────────────

func TestController_SlashCommandConvertsToHeading(t *testing.T) {
	f := newFixture(t, "Notes", para("b", ""))

	f.editor.TextChanged(f.ctx, "b", "/h", editor.Anchor{Top: 24})
	opened, ok := f.events.Last(domain.EventPaletteOpened)
	require.True(t, ok)
	assert.Equal(t, "b", opened.Data.(editor.PaletteState).BlockID)
	assert.Equal(t, editor.Anchor{Top: 24}, opened.Data.(editor.PaletteState).Anchor)

	assert.True(t, f.editor.Key(f.ctx, "b", editor.KeyArrowDown))
	hl, _ := f.events.Last(domain.EventPaletteHighlight)
	assert.Equal(t, 1, hl.Data)

	assert.True(t, f.editor.Key(f.ctx, "b", editor.KeyEnter))

	blocks := f.editor.State().Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, domain.BlockTypeHeading, blocks[0].Type)
	assert.Equal(t, "h", blocks[0].Content)
	assert.Equal(t, editor.Cursor{BlockID: blocks[0].ID, Offset: editor.CursorEnd}, f.editor.Cursor())
	assert.False(t, f.editor.Palette().Open)

	_, closed := f.events.Last(domain.EventPaletteClosed)
	assert.True(t, closed)
	assert.Equal(t, blocks, f.stored(t).Blocks)
}

func TestController_ReorderBeforeFirst(t *testing.T) {
	f := newFixture(t, "", para("A", "a"), para("B", "b"), para("C", "c"))

	f.editor.DragStart(f.ctx, "C")
	assert.True(t, f.editor.DragOver(f.ctx, "A", 5, 40))
	f.editor.DragEnd(f.ctx)

	assert.Equal(t, []string{"C", "A", "B"}, ids(f.editor.State().Blocks))
	assert.Equal(t, []string{"C", "A", "B"}, ids(f.stored(t).Blocks))
	assert.Empty(t, f.editor.Dragging())
}

func TestController_BackspaceOnOnlyEmptyBlock(t *testing.T) {
	f := newFixture(t, "T", para("only", ""))

	assert.True(t, f.editor.Key(f.ctx, "only", editor.KeyBackspace))

	assert.Empty(t, f.editor.State().Blocks)
	assert.Equal(t, editor.Cursor{BlockID: "", Offset: editor.CursorEnd}, f.editor.Cursor())
	vis, ok := f.events.Last(domain.EventPlaceholderVisibility)
	require.True(t, ok)
	assert.Equal(t, true, vis.Data)
	assert.Empty(t, f.stored(t).Blocks)
}

// ─── Keys ──────────────────────────────────────────────────

func TestController_EnterSplits(t *testing.T) {
	f := newFixture(t, "T", para("a", "1"), para("b", "2"))

	assert.True(t, f.editor.Key(f.ctx, "a", editor.KeyEnter))
	blocks := f.editor.State().Blocks
	require.Len(t, blocks, 3)
	assert.Equal(t, "a", blocks[0].ID)
	assert.Equal(t, "b", blocks[2].ID)
	assert.Equal(t, editor.Cursor{BlockID: blocks[1].ID}, f.editor.Cursor())
	assert.Len(t, f.stored(t).Blocks, 3)

	cur, ok := f.events.Last(domain.EventCursorMoved)
	require.True(t, ok)
	assert.Equal(t, editor.Cursor{BlockID: blocks[1].ID}, cur.Data)
}

func TestController_EnterInTitleInsertsFirstBlock(t *testing.T) {
	f := newFixture(t, "T", para("a", "1"))

	assert.True(t, f.editor.Key(f.ctx, "", editor.KeyEnter))
	blocks := f.editor.State().Blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, "a", blocks[1].ID)
}

func TestController_BackspaceOnTextIsNotHandled(t *testing.T) {
	f := newFixture(t, "T", para("a", "1"), para("b", "x"))

	assert.False(t, f.editor.Key(f.ctx, "b", editor.KeyBackspace))
	assert.False(t, f.editor.Key(f.ctx, "", editor.KeyBackspace))
	assert.False(t, f.editor.Key(f.ctx, "b", "a"))
	assert.Len(t, f.editor.State().Blocks, 2)
	assert.Empty(t, f.events.Events)
}

func TestController_BackspaceFocusesPreviousBlock(t *testing.T) {
	f := newFixture(t, "T", para("a", "1"), para("b", ""))

	assert.True(t, f.editor.Key(f.ctx, "b", editor.KeyBackspace))
	assert.Equal(t, editor.Cursor{BlockID: "a", Offset: editor.CursorEnd}, f.editor.Cursor())
	assert.Empty(t, f.events.Named(domain.EventPlaceholderVisibility))
}

func TestController_UnknownBlockIsDropped(t *testing.T) {
	f := newFixture(t, "T", para("a", "1"))

	assert.False(t, f.editor.Key(f.ctx, "ghost", editor.KeyEnter))
	assert.False(t, f.editor.Key(f.ctx, "ghost", editor.KeyBackspace))
	f.editor.TextChanged(f.ctx, "ghost", "x", editor.Anchor{})
	f.editor.DragStart(f.ctx, "ghost")
	assert.Empty(t, f.editor.Dragging())
	assert.Len(t, f.editor.State().Blocks, 1)
}

// ─── Palette ───────────────────────────────────────────────

func TestController_PaletteConsumesNavigationKeys(t *testing.T) {
	f := newFixture(t, "T", para("a", ""), para("b", "text"))

	f.editor.TextChanged(f.ctx, "a", "/", editor.Anchor{})
	for i := 0; i < 5; i++ {
		assert.True(t, f.editor.Key(f.ctx, "a", editor.KeyArrowDown))
	}
	assert.Equal(t, 0, f.editor.Palette().Selected)
	assert.True(t, f.editor.Key(f.ctx, "a", editor.KeyArrowUp))
	assert.Equal(t, 4, f.editor.Palette().Selected)

	// Escape closes without touching the blocks.
	before := f.editor.State().Blocks
	assert.True(t, f.editor.Key(f.ctx, "a", editor.KeyEscape))
	assert.False(t, f.editor.Palette().Open)
	assert.Equal(t, before, f.editor.State().Blocks)

	// Once closed, arrows fall through.
	assert.False(t, f.editor.Key(f.ctx, "a", editor.KeyArrowDown))
}

func TestController_PaletteEnterFromOtherBlockCommitsPaletteBlock(t *testing.T) {
	f := newFixture(t, "T", para("a", "x/"), para("b", "other"))

	f.editor.TextChanged(f.ctx, "a", "x/", editor.Anchor{})
	f.editor.Key(f.ctx, "a", editor.KeyArrowDown)
	f.editor.Key(f.ctx, "a", editor.KeyArrowDown)
	assert.True(t, f.editor.Key(f.ctx, "b", editor.KeyEnter))

	blocks := f.editor.State().Blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, domain.BlockTypeTodo, blocks[0].Type)
	assert.Equal(t, "[ ] x", blocks[0].Content)
	assert.Equal(t, "b", blocks[1].ID)
}

func TestController_TypingWithoutSlashClosesPalette(t *testing.T) {
	f := newFixture(t, "T", para("a", ""))

	f.editor.TextChanged(f.ctx, "a", "/", editor.Anchor{})
	require.True(t, f.editor.Palette().Open)
	f.editor.TextChanged(f.ctx, "a", "", editor.Anchor{})
	assert.False(t, f.editor.Palette().Open)
	assert.Len(t, f.events.Named(domain.EventPaletteClosed), 1)
}

func TestController_PaletteReopensForAnotherBlock(t *testing.T) {
	f := newFixture(t, "T", para("a", ""), para("b", ""))

	f.editor.TextChanged(f.ctx, "a", "/", editor.Anchor{})
	f.editor.Key(f.ctx, "a", editor.KeyArrowDown)
	f.editor.TextChanged(f.ctx, "b", "/", editor.Anchor{Top: 80})

	p := f.editor.Palette()
	assert.Equal(t, "b", p.BlockID)
	assert.Equal(t, 0, p.Selected)
}

func TestController_PaletteClickAndHover(t *testing.T) {
	f := newFixture(t, "T", para("a", ""))

	f.editor.TextChanged(f.ctx, "a", "quote me /", editor.Anchor{})
	f.editor.PaletteHover(f.ctx, 2)
	assert.Equal(t, 2, f.editor.Palette().Highlighted)
	assert.Equal(t, 0, f.editor.Palette().Selected)
	f.editor.PaletteLeave(f.ctx)
	assert.Equal(t, 0, f.editor.Palette().Highlighted)

	f.editor.PaletteClick(f.ctx, 3)
	blocks := f.editor.State().Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, domain.BlockTypeQuote, blocks[0].Type)
	assert.Equal(t, "quote me", blocks[0].Content)

	// Clicks with no palette open do nothing.
	f.editor.PaletteClick(f.ctx, 1)
	assert.Equal(t, domain.BlockTypeQuote, f.editor.State().Blocks[0].Type)
}

func TestController_ConvertRemovesOnlyFirstSlash(t *testing.T) {
	f := newFixture(t, "T", para("a", ""))

	f.editor.TextChanged(f.ctx, "a", "a/b/c", editor.Anchor{})
	f.editor.Key(f.ctx, "a", editor.KeyEnter)
	assert.Equal(t, "ab/c", f.editor.State().Blocks[0].Content)
}

// ─── Placeholder, title, todos ─────────────────────────────

func TestController_EmptyPageShowsPlaceholderUntilTyping(t *testing.T) {
	f := newFixture(t, "")
	require.True(t, f.initial.PlaceholderVisible)
	require.Len(t, f.initial.Blocks, 1)
	starter := f.initial.Blocks[0].ID

	f.editor.TextChanged(f.ctx, starter, "hello", editor.Anchor{})
	vis, ok := f.events.Last(domain.EventPlaceholderVisibility)
	require.True(t, ok)
	assert.Equal(t, false, vis.Data)
	assert.Len(t, f.stored(t).Blocks, 1)
	assert.Equal(t, "hello", f.stored(t).Blocks[0].Content)

	f.editor.TextChanged(f.ctx, starter, "hello!", editor.Anchor{})
	assert.Len(t, f.events.Named(domain.EventPlaceholderVisibility), 1)
}

func TestController_TitleChangedPersistsTrimmed(t *testing.T) {
	f := newFixture(t, "", para("a", "x"))

	f.editor.TitleChanged(f.ctx, "  Groceries ")
	assert.Equal(t, "Groceries", f.stored(t).Title)
	list, _ := f.events.Last(domain.EventPagesChanged)
	assert.Equal(t, "Groceries", list.Data.([]domain.PageSummary)[0].Title)
}

func TestController_ToggleTodo(t *testing.T) {
	f := newFixture(t, "", domain.Block{ID: "t", Type: domain.BlockTypeTodo, Content: "[ ] milk"})

	f.editor.ToggleTodo(f.ctx, "t")
	assert.Equal(t, "[x] milk", f.stored(t).Blocks[0].Content)
}

// ─── Drag ──────────────────────────────────────────────────

func TestController_DragWithoutSourceDoesNothing(t *testing.T) {
	f := newFixture(t, "", para("A", ""), para("B", ""))

	assert.False(t, f.editor.DragOver(f.ctx, "A", 30, 40))
	f.editor.DragStart(f.ctx, "A")
	assert.False(t, f.editor.DragOver(f.ctx, "A", 30, 40))
	assert.True(t, f.editor.DragOver(f.ctx, "B", 30, 40))
	assert.Equal(t, []string{"B", "A"}, ids(f.editor.State().Blocks))

	f.editor.DragEnd(f.ctx)
	assert.False(t, f.editor.DragOver(f.ctx, "B", 30, 40))
}

func TestController_DragStartClosesPalette(t *testing.T) {
	f := newFixture(t, "", para("A", ""), para("B", ""))

	f.editor.TextChanged(f.ctx, "A", "/", editor.Anchor{})
	f.editor.DragStart(f.ctx, "B")
	assert.False(t, f.editor.Palette().Open)
	assert.Equal(t, "B", f.editor.Dragging())
}

// ─── Persistence ───────────────────────────────────────────

func TestController_EditsSurviveReload(t *testing.T) {
	f := newFixture(t, "", para("a", ""))

	f.editor.TitleChanged(f.ctx, "Trip")
	f.editor.TextChanged(f.ctx, "a", "pack /", editor.Anchor{})
	f.editor.PaletteClick(f.ctx, 2)
	first := f.editor.State().Blocks[0].ID
	f.editor.Key(f.ctx, first, editor.KeyEnter)

	pages := service.NewPageService(f.kv, service.NoopEmitter{}, zerolog.Nop())
	pages.Load(f.ctx)
	c := editor.NewController(pages, service.NoopEmitter{}, zerolog.Nop())
	state := c.LoadActivePage(f.ctx)

	assert.Equal(t, "Trip", state.Title)
	assert.Equal(t, f.editor.State().Blocks, state.Blocks)
	assert.Equal(t, "[ ] pack", state.Blocks[0].Content)
	assert.False(t, state.PlaceholderVisible)
}

func TestController_NoActivePage(t *testing.T) {
	ctx := context.Background()
	pages := service.NewPageService(storage.NewMemoryStore(), service.NoopEmitter{}, zerolog.Nop())
	pages.Load(ctx)
	c := editor.NewController(pages, service.NoopEmitter{}, zerolog.Nop())

	state := c.LoadActivePage(ctx)
	assert.Empty(t, state.PageID)
	assert.Empty(t, pages.ListPages())
}

func TestController_SyncExternal(t *testing.T) {
	f := newFixture(t, "T", para("a", "1"))
	assert.False(t, f.editor.SyncExternal(f.ctx))

	require.NoError(t, f.pages.UpdatePage(f.ctx, domain.Page{
		ID:     f.pageID,
		Title:  "T",
		Blocks: []domain.Block{para("a", "1"), para("z", "from elsewhere")},
	}))
	assert.True(t, f.editor.SyncExternal(f.ctx))
	assert.Len(t, f.editor.State().Blocks, 2)
	_, ok := f.events.Last(domain.EventPageLoaded)
	assert.True(t, ok)
}

func TestController_SyncExternalIgnoresUntouchedStarter(t *testing.T) {
	f := newFixture(t, "")
	assert.False(t, f.editor.SyncExternal(f.ctx))
}

// ─── Todo text ─────────────────────────────────────────────

func TestController_TodoTypingStoresOneMarker(t *testing.T) {
	f := newFixture(t, "", domain.Block{ID: "t", Type: domain.BlockTypeTodo, Content: "[ ] "})

	// The view sends the visible text of the block.
	f.editor.TextChanged(f.ctx, "t", "milk", editor.Anchor{})
	assert.Equal(t, "[ ] milk", f.stored(t).Blocks[0].Content)

	// A marker that reaches the controller anyway is not stacked.
	f.editor.TextChanged(f.ctx, "t", "[ ] milkx", editor.Anchor{})
	assert.Equal(t, "[ ] milkx", f.stored(t).Blocks[0].Content)

	f.editor.ToggleTodo(f.ctx, "t")
	f.editor.TextChanged(f.ctx, "t", "eggs", editor.Anchor{})
	assert.Equal(t, "[x] eggs", f.stored(t).Blocks[0].Content)
}

func TestController_EmptiedTodoIsRemovedByBackspace(t *testing.T) {
	f := newFixture(t, "", para("a", "first"), domain.Block{ID: "t", Type: domain.BlockTypeTodo, Content: "[ ] milk"})

	f.editor.TextChanged(f.ctx, "t", "", editor.Anchor{})
	assert.Equal(t, "[ ] ", f.stored(t).Blocks[1].Content)

	assert.True(t, f.editor.Key(f.ctx, "t", editor.KeyBackspace))
	assert.Equal(t, []string{"a"}, ids(f.stored(t).Blocks))
}

func TestController_SlashCommandOnTodoDropsMarker(t *testing.T) {
	f := newFixture(t, "", domain.Block{ID: "t", Type: domain.BlockTypeTodo, Content: "[ ] "})

	f.editor.TextChanged(f.ctx, "t", "/h", editor.Anchor{})
	f.editor.Key(f.ctx, "t", editor.KeyArrowDown)
	f.editor.Key(f.ctx, "t", editor.KeyEnter)

	blocks := f.stored(t).Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, domain.BlockTypeHeading, blocks[0].Type)
	assert.Equal(t, "h", blocks[0].Content)
}

// ─── Writes from other processes ───────────────────────────

func TestController_SaveKeepsBlocksAddedElsewhere(t *testing.T) {
	f := newFixture(t, "T", para("a", "1"))

	agent := service.NewPageService(f.kv, service.NoopEmitter{}, zerolog.Nop())
	agent.Load(f.ctx)
	_, err := agent.AppendBlock(f.ctx, f.pageID, para("z", "from agent"))
	require.NoError(t, err)

	f.editor.TextChanged(f.ctx, "a", "1 edited", editor.Anchor{})

	assert.Equal(t, []string{"a", "z"}, ids(f.stored(t).Blocks))
	assert.Equal(t, "1 edited", f.stored(t).Blocks[0].Content)
	assert.Equal(t, []string{"a", "z"}, ids(f.editor.State().Blocks))
	_, ok := f.events.Last(domain.EventBlocksChanged)
	assert.True(t, ok)

	changed, err := agent.Refresh(f.ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	page, err := agent.GetPage(f.pageID)
	require.NoError(t, err)
	assert.Equal(t, "1 edited", page.Blocks[0].Content)
}

func TestController_DragSurvivesRepeatedMoves(t *testing.T) {
	f := newFixture(t, "", para("A", "a"), para("B", "b"), para("C", "c"))

	f.editor.DragStart(f.ctx, "A")
	assert.True(t, f.editor.DragOver(f.ctx, "C", 35, 40))
	assert.Equal(t, []string{"B", "C", "A"}, ids(f.editor.State().Blocks))
	assert.Equal(t, "A", f.editor.Dragging())

	assert.True(t, f.editor.DragOver(f.ctx, "B", 5, 40))
	assert.Equal(t, []string{"A", "B", "C"}, ids(f.stored(t).Blocks))
	assert.Len(t, f.events.Named(domain.EventBlocksChanged), 2)

	// drop and dragend both end the drag.
	f.editor.DragEnd(f.ctx)
	f.editor.DragEnd(f.ctx)
	assert.Empty(t, f.editor.Dragging())
	assert.False(t, f.editor.DragOver(f.ctx, "C", 35, 40))
}
