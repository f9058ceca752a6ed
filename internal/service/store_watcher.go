package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────
// Store Watcher: picks up writes made by other processes
// ─────────────────────────────────────────────────────────────
//
// A standalone MCP server or a second window writes the same store.
// File-backed stores are watched with fsnotify; network stores have no
// file to watch and are polled instead.

// Refresher reloads state from the store and reports whether it changed.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// WatchOptions configures a StoreWatcher.
type WatchOptions struct {
	// Dir is watched for file changes. Empty disables fsnotify.
	Dir string
	// PollInterval re-checks the store periodically. Zero disables polling.
	PollInterval time.Duration
	// Debounce coalesces bursts of file events.
	Debounce time.Duration
}

// StoreWatcher calls Refresh when the store may have changed and invokes
// onChange when it actually did.
type StoreWatcher struct {
	pages    Refresher
	onChange func(ctx context.Context)
	log      zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewStoreWatcher creates a StoreWatcher. onChange may be nil.
func NewStoreWatcher(pages Refresher, log zerolog.Logger, onChange func(ctx context.Context)) *StoreWatcher {
	return &StoreWatcher{
		pages:    pages,
		onChange: onChange,
		log:      log.With().Str("component", "watcher").Logger(),
	}
}

// Start begins watching. Calling Start again restarts with new options.
func (w *StoreWatcher) Start(ctx context.Context, opts WatchOptions) error {
	w.Stop()
	if opts.Debounce <= 0 {
		opts.Debounce = 250 * time.Millisecond
	}

	var watcher *fsnotify.Watcher
	if opts.Dir != "" {
		var err error
		watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		if err := watcher.Add(opts.Dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watch %s: %w", opts.Dir, err)
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.watcher = watcher
	w.mu.Unlock()

	if watcher != nil {
		w.wg.Add(1)
		go w.watchLoop(watchCtx, watcher, opts.Debounce)
		w.log.Info().Str("dir", opts.Dir).Msg("watching store directory")
	}
	if opts.PollInterval > 0 {
		w.wg.Add(1)
		go w.pollLoop(watchCtx, opts.PollInterval)
		w.log.Info().Dur("interval", opts.PollInterval).Msg("polling store")
	}
	return nil
}

// Stop terminates watching and waits for the loops to exit.
func (w *StoreWatcher) Stop() {
	w.mu.Lock()
	cancel, watcher := w.cancel, w.watcher
	w.cancel, w.watcher = nil, nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		watcher.Close()
	}
	w.wg.Wait()
}

func (w *StoreWatcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration) {
	defer w.wg.Done()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() { w.check(ctx) })
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *StoreWatcher) pollLoop(ctx context.Context, interval time.Duration) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *StoreWatcher) check(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	changed, err := w.pages.Refresh(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("refresh")
		return
	}
	if changed && w.onChange != nil {
		w.onChange(ctx)
	}
}
