package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"blocknote/internal/config"
	mcpserver "blocknote/internal/mcp"
	"blocknote/internal/service"
	"blocknote/internal/storage"
)

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// A running window sees its writes through the store watcher.
func ServeMCP(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	store, err := storage.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	pages := service.NewPageService(store, service.NoopEmitter{}, log)
	pages.Load(ctx)

	// Pick up edits the GUI makes while the server runs.
	watcher := service.NewStoreWatcher(pages, log, nil)
	opts := service.WatchOptions{}
	if cfg.FileBacked() {
		opts.PollInterval = 2 * time.Second
	} else {
		opts.PollInterval = time.Duration(cfg.Store.PollSeconds) * time.Second
	}
	if err := watcher.Start(ctx, opts); err != nil {
		log.Warn().Err(err).Msg("store watcher disabled")
	}
	defer watcher.Stop()

	srv := mcpserver.New(mcpserver.Deps{
		Pages:     pages,
		ExportDir: cfg.Export.Dir,
		Log:       log,
	})
	return srv.ServeStdio()
}
