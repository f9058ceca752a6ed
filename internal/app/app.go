package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"blocknote/internal/config"
	"blocknote/internal/domain"
	"blocknote/internal/editor"
	"blocknote/internal/export"
	"blocknote/internal/service"
	"blocknote/internal/storage"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	cfg     config.Config
	log     zerolog.Logger
	emitter *wailsEmitter

	store   domain.KVStore
	pages   *service.PageService
	editor  *editor.Controller
	window  *service.WindowSettingsService
	backup  *service.BackupService
	watcher *service.StoreWatcher
}

// New creates a new App. Call Open before wails.Run.
func New(cfg config.Config, log zerolog.Logger) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		emitter: &wailsEmitter{},
	}
}

// Open connects the store and loads the pages. A store that cannot be
// opened is replaced by an in-memory one so the editor stays usable; the
// user is told their edits will not be kept.
func (a *App) Open(ctx context.Context) error {
	store, err := storage.Open(ctx, a.cfg.StoreOptions())
	if err != nil {
		a.log.Error().Err(err).Str("driver", a.cfg.Store.Driver).Msg("open store, falling back to memory")
		a.emitter.Emit(ctx, domain.EventStoreNotice, "Storage is unavailable; changes will not be saved.")
		store = storage.NewMemoryStore()
	}
	a.store = store

	a.pages = service.NewPageService(store, a.emitter, a.log)
	a.editor = editor.NewController(a.pages, a.emitter, a.log)
	a.window = service.NewWindowSettingsService(store)

	format, err := export.ParseFormat(a.cfg.Backup.Format)
	if err != nil {
		return fmt.Errorf("backup format: %w", err)
	}
	a.backup = service.NewBackupService(a.pages, filepath.Join(a.cfg.Export.Dir, "backups"), format, a.emitter, a.log)
	a.watcher = service.NewStoreWatcher(a.pages, a.log, a.onExternalChange)

	a.pages.Load(ctx)
	if a.pages.CurrentPageID() == "" {
		a.pages.CreatePage(ctx)
	}
	a.editor.LoadActivePage(ctx)
	return nil
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.emitter.attach(ctx)

	opts := service.WatchOptions{}
	if a.cfg.FileBacked() {
		opts.Dir = filepath.Dir(a.cfg.Store.Path)
	} else if a.cfg.Store.Driver != storage.DriverMemory {
		opts.PollInterval = time.Duration(a.cfg.Store.PollSeconds) * time.Second
	}
	if err := a.watcher.Start(ctx, opts); err != nil {
		a.log.Warn().Err(err).Msg("store watcher disabled")
	}
	if err := a.backup.Start(a.cfg.Backup.Schedule); err != nil {
		a.log.Error().Err(err).Msg("backups disabled")
	}
	a.log.Info().Str("driver", a.cfg.Store.Driver).Msg("started")
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	a.watcher.Stop()
	a.backup.Stop()

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	a.backup.WaitRunning(waitCtx)

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close store")
		}
	}
}

// WindowSize is the size the main window should open at.
func (a *App) WindowSize(ctx context.Context) service.WindowSize {
	return a.window.LoadWindowSize(ctx)
}

// onExternalChange runs after another process changed the store.
func (a *App) onExternalChange(ctx context.Context) {
	if a.editor.SyncExternal(ctx) {
		a.log.Debug().Msg("editor reloaded after external change")
	}
}
