package domain

// Events emitted to the view.
const (
	EventPagesChanged          = "pages:changed"
	EventPageLoaded            = "page:loaded"
	EventBlocksChanged         = "blocks:changed"
	EventCursorMoved           = "cursor:moved"
	EventPaletteOpened         = "palette:opened"
	EventPaletteHighlight      = "palette:highlight"
	EventPaletteClosed         = "palette:closed"
	EventPlaceholderVisibility = "placeholder:visibility"
	EventStoreNotice           = "store:notice"
	EventBackupFinished        = "backup:finished"
)
