package service

import (
	"context"
	"sync"
)

// JobGuard is exported for the service_test package.
type JobGuard = jobGuard

// ── jobGuard ───────────────────────────────────────────────

// jobGuard lets one run of each named job through at a time and lets
// shutdown wait for the runs in flight.
type jobGuard struct {
	mu     sync.Mutex
	active map[string]bool
	wg     sync.WaitGroup
}

// TryLock claims id. It fails while a run of id holds it.
func (g *jobGuard) TryLock(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[id] {
		return false
	}
	if g.active == nil {
		g.active = make(map[string]bool)
	}
	g.active[id] = true
	g.wg.Add(1)
	return true
}

// Unlock releases a claim taken by a successful TryLock.
func (g *jobGuard) Unlock(id string) {
	g.mu.Lock()
	delete(g.active, id)
	g.mu.Unlock()
	g.wg.Done()
}

func (g *jobGuard) Running(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active[id]
}

// WaitAll returns when no job is running or ctx ends.
func (g *jobGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
