package app

import (
	"context"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"blocknote/internal/domain"
)

// wailsEmitter delivers events through the Wails runtime. Until the
// window exists there is nowhere to send them: store notices are held
// back and replayed on attach, everything else is dropped because the
// view reads the full state when it starts.
type wailsEmitter struct {
	mu      sync.Mutex
	ctx     context.Context
	pending []any
}

func (e *wailsEmitter) Emit(_ context.Context, event string, data any) {
	e.mu.Lock()
	ctx := e.ctx
	if ctx == nil {
		if event == domain.EventStoreNotice {
			e.pending = append(e.pending, data)
		}
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	wailsRuntime.EventsEmit(ctx, event, data)
}

func (e *wailsEmitter) attach(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, data := range pending {
		wailsRuntime.EventsEmit(ctx, domain.EventStoreNotice, data)
	}
}

// Notices returns store notices not yet delivered to a window.
func (e *wailsEmitter) Notices() []any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]any(nil), e.pending...)
}
