package app

// ─────────────────────────────────────────────────────────────
// Editor Handlers: thin delegates to PageService and Controller
// ─────────────────────────────────────────────────────────────

import (
	"context"
	"errors"

	"blocknote/internal/domain"
	"blocknote/internal/editor"
	"blocknote/internal/export"
)

// Bindings run outside any request scope; the Wails context is attached
// to the emitter instead.
var bg = context.Background()

// ── Pages ──────────────────────────────────────────────────

func (a *App) ListPages() []domain.PageSummary {
	return a.pages.ListPages()
}

// CreatePage adds an empty page, makes it active and returns its surface.
func (a *App) CreatePage() domain.PageState {
	a.pages.CreatePage(bg)
	return a.editor.LoadActivePage(bg)
}

// SelectPage switches to a page. Unknown ids are logged and ignored.
func (a *App) SelectPage(id string) domain.PageState {
	if err := a.pages.SelectPage(bg, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.log.Warn().Str("page", id).Msg("select unknown page")
			return a.editor.State()
		}
		a.log.Error().Err(err).Msg("select page")
	}
	return a.editor.LoadActivePage(bg)
}

func (a *App) GetActivePage() domain.PageState {
	return a.editor.State()
}

// ── Typing ─────────────────────────────────────────────────

// KeyDown reports whether the key was handled; the view prevents the
// default action when it was.
func (a *App) KeyDown(blockID, key string) bool {
	return a.editor.Key(bg, blockID, editor.Key(key))
}

func (a *App) TitleInput(text string) {
	a.editor.TitleChanged(bg, text)
}

// BlockInput records a block's visible text (todos without their marker).
// top/left are where a palette would open, just below the block.
func (a *App) BlockInput(blockID, text string, top, left float64) {
	a.editor.TextChanged(bg, blockID, text, editor.Anchor{Top: top, Left: left})
}

func (a *App) ToggleTodo(blockID string) {
	a.editor.ToggleTodo(bg, blockID)
}

// ── Palette ────────────────────────────────────────────────

func (a *App) PaletteClick(index int) {
	a.editor.PaletteClick(bg, index)
}

func (a *App) PaletteHover(index int) {
	a.editor.PaletteHover(bg, index)
}

func (a *App) PaletteLeave() {
	a.editor.PaletteLeave(bg)
}

// ── Drag ───────────────────────────────────────────────────

func (a *App) DragStart(blockID string) {
	a.editor.DragStart(bg, blockID)
}

func (a *App) DragOver(targetID string, offsetY, height float64) bool {
	return a.editor.DragOver(bg, targetID, offsetY, height)
}

func (a *App) DragEnd() {
	a.editor.DragEnd(bg)
}

// ── Export & window ────────────────────────────────────────

// ExportActivePage writes the active page as HTML and returns the path.
func (a *App) ExportActivePage() (string, error) {
	page, ok := a.pages.ActivePage()
	if !ok {
		return "", domain.ErrNotFound
	}
	path, err := export.WriteFile(a.cfg.Export.Dir, export.FormatHTML, page)
	if err != nil {
		a.log.Error().Err(err).Msg("export")
		return "", err
	}
	a.log.Info().Str("path", path).Msg("page exported")
	return path, nil
}

// StyleSheet is the CSS for every block type's presentation hint.
func (a *App) StyleSheet() string {
	return editor.StyleSheet()
}

func (a *App) SaveWindowSize(width, height int) error {
	return a.window.SaveWindowSize(bg, width, height)
}
