package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"blocknote/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Page Service: the page repository
// ─────────────────────────────────────────────────────────────

// PageService holds every page in memory and writes the collection and
// the active-page pointer through to the store on each mutation.
type PageService struct {
	mu        sync.RWMutex
	store     domain.KVStore
	emitter   EventEmitter
	log       zerolog.Logger
	pages     map[string]*domain.Page
	order     []string
	currentID string
	// lastPages is the serialized collection last read or written, so
	// Refresh can tell our own writes from someone else's.
	lastPages string

	now   func() time.Time
	newID func() string
}

// NewPageService creates a PageService. Call Load before use.
func NewPageService(store domain.KVStore, emitter EventEmitter, log zerolog.Logger) *PageService {
	return &PageService{
		store:   store,
		emitter: emitter,
		log:     log.With().Str("component", "pages").Logger(),
		pages:   make(map[string]*domain.Page),
		now:     time.Now,
		newID:   newPageID,
	}
}

// newPageID returns a time-ordered id so ids sort in creation order.
func newPageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ── Loading ────────────────────────────────────────────────

// Load reads prior state from the store. Missing, unreadable or malformed
// data leaves an empty collection and is reported as a store notice; it
// never fails.
func (s *PageService) Load(ctx context.Context) {
	raw, current, err := s.read(ctx)

	s.mu.Lock()
	if err != nil {
		s.reset()
	} else if perr := s.apply(raw, current); perr != nil {
		err = perr
		s.reset()
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("starting with no pages")
		s.emitter.Emit(ctx, domain.EventStoreNotice, "Saved pages could not be read; starting fresh.")
	}
}

// Refresh reloads the collection if the store holds something other than
// what this service last read or wrote. Reports whether anything changed.
// The active page is kept unless it disappeared.
func (s *PageService) Refresh(ctx context.Context) (bool, error) {
	// Read under the lock so a concurrent write cannot be undone by an
	// older snapshot.
	s.mu.Lock()
	raw, current, err := s.read(ctx)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if raw == s.lastPages {
		s.mu.Unlock()
		return false, nil
	}
	if err := s.adopt(raw, current); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.mu.Unlock()

	s.emitPagesChanged(ctx)
	return true, nil
}

func (s *PageService) read(ctx context.Context) (pages, current string, err error) {
	pages, _, err = s.store.Get(ctx, domain.KeyPages)
	if err != nil {
		return "", "", fmt.Errorf("read pages: %w", err)
	}
	current, _, err = s.store.Get(ctx, domain.KeyCurrentPageID)
	if err != nil {
		return "", "", fmt.Errorf("read current page: %w", err)
	}
	return pages, current, nil
}

// apply replaces in-memory state. Caller holds s.mu.
func (s *PageService) apply(raw, current string) error {
	pages := map[string]*domain.Page{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &pages); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrMalformedStoredData, err)
		}
	}
	// A stored JSON null decodes to a nil map.
	if pages == nil {
		pages = map[string]*domain.Page{}
	}

	order := make([]string, 0, len(pages))
	for id, p := range pages {
		if p == nil {
			p = &domain.Page{}
			pages[id] = p
		}
		p.ID = id
		for i := range p.Blocks {
			p.Blocks[i].Type = domain.ParseBlockType(string(p.Blocks[i].Type))
			if p.Blocks[i].ID == "" {
				p.Blocks[i].ID = uuid.NewString()
			}
		}
		if p.Blocks == nil {
			p.Blocks = []domain.Block{}
		}
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := pages[order[i]], pages[order[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if _, ok := pages[current]; !ok {
		current = ""
	}
	s.pages = pages
	s.order = order
	s.currentID = current
	s.lastPages = raw
	return nil
}

// adopt applies a collection written elsewhere. This window stays on its
// page while that page exists. Caller holds s.mu.
func (s *PageService) adopt(raw, current string) error {
	keep := s.currentID
	if err := s.apply(raw, current); err != nil {
		return err
	}
	if _, ok := s.pages[keep]; ok {
		s.currentID = keep
	}
	return nil
}

// catchUp adopts writes other processes made since this service last read
// or wrote, so a write never replaces them with an older collection.
// Reports whether anything was adopted. Caller holds s.mu.
func (s *PageService) catchUp(ctx context.Context) bool {
	raw, _, err := s.store.Get(ctx, domain.KeyPages)
	if err != nil {
		s.log.Warn().Err(err).Msg("re-read pages before write")
		return false
	}
	if raw == s.lastPages {
		return false
	}
	if err := s.adopt(raw, s.currentID); err != nil {
		s.log.Warn().Err(err).Msg("ignoring unreadable pages written elsewhere")
		return false
	}
	return true
}

// keepPage puts back a page this service knows about that a write made
// elsewhere dropped. Caller holds s.mu.
func (s *PageService) keepPage(p *domain.Page) *domain.Page {
	if cur, ok := s.pages[p.ID]; ok {
		return cur
	}
	s.pages[p.ID] = p
	s.order = append(s.order, p.ID)
	return p
}

// reset empties in-memory state. Caller holds s.mu.
func (s *PageService) reset() {
	s.pages = make(map[string]*domain.Page)
	s.order = nil
	s.currentID = ""
	s.lastPages = ""
}

// ── Queries ────────────────────────────────────────────────

// ListPages returns the sidebar entries in creation order.
func (s *PageService) ListPages() []domain.PageSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summaries()
}

func (s *PageService) summaries() []domain.PageSummary {
	out := make([]domain.PageSummary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, domain.PageSummary{
			ID:     id,
			Title:  s.pages[id].Title,
			Active: id == s.currentID,
		})
	}
	return out
}

// CurrentPageID returns the active page id, or "" when none is active.
func (s *PageService) CurrentPageID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// ActivePage returns a copy of the active page.
func (s *PageService) ActivePage() (domain.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[s.currentID]
	if !ok {
		return domain.Page{}, false
	}
	return p.Clone(), true
}

// GetPage returns a copy of a page.
func (s *PageService) GetPage(id string) (domain.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[id]
	if !ok {
		return domain.Page{}, fmt.Errorf("page %q: %w", id, domain.ErrNotFound)
	}
	return p.Clone(), nil
}

// AllPages returns copies of every page in creation order.
func (s *PageService) AllPages() []domain.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Page, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.pages[id].Clone())
	}
	return out
}

// ── Mutations ──────────────────────────────────────────────

// CreatePage inserts an empty page, makes it active and persists both
// entries. Persistence failures are logged, never returned.
func (s *PageService) CreatePage(ctx context.Context) string {
	s.mu.Lock()
	s.catchUp(ctx)
	now := s.now().UTC()
	id := s.newID()
	s.pages[id] = &domain.Page{ID: id, Blocks: []domain.Block{}, CreatedAt: now, UpdatedAt: now}
	s.order = append(s.order, id)
	s.currentID = id
	err := s.writePages(ctx)
	if err == nil {
		err = s.writeCurrent(ctx, id)
	}
	s.mu.Unlock()

	if err != nil {
		s.writeFailed(ctx, err)
	}
	s.log.Info().Str("page", id).Msg("page created")
	s.emitPagesChanged(ctx)
	return id
}

// SelectPage makes id the active page. Unknown ids leave state unchanged.
func (s *PageService) SelectPage(ctx context.Context, id string) error {
	s.mu.Lock()
	s.catchUp(ctx)
	if _, ok := s.pages[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("select page %q: %w", id, domain.ErrNotFound)
	}
	s.currentID = id
	err := s.writeCurrent(ctx, id)
	s.mu.Unlock()

	if err != nil {
		s.writeFailed(ctx, err)
	}
	s.emitPagesChanged(ctx)
	return nil
}

// UpdateActivePage overwrites the active page's title and blocks.
// Without an active page it does nothing. Edits another process made to
// the page since it was last read are folded in; it reports whether that
// happened, in which case the stored page differs from what was passed.
func (s *PageService) UpdateActivePage(ctx context.Context, title string, blocks []domain.Block) bool {
	s.mu.Lock()
	p, ok := s.pages[s.currentID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	merged, err := s.update(ctx, p, title, blocks)
	s.currentID = p.ID
	s.mu.Unlock()

	if err != nil {
		s.writeFailed(ctx, err)
	}
	s.emitPagesChanged(ctx)
	return merged
}

// UpdatePage overwrites any page by id, folding in edits made elsewhere
// like UpdateActivePage.
func (s *PageService) UpdatePage(ctx context.Context, page domain.Page) error {
	s.mu.Lock()
	p, ok := s.pages[page.ID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("update page %q: %w", page.ID, domain.ErrNotFound)
	}
	_, err := s.update(ctx, p, page.Title, page.Blocks)
	s.mu.Unlock()

	if err != nil {
		s.writeFailed(ctx, err)
	}
	s.emitPagesChanged(ctx)
	return nil
}

// update writes title and blocks to p. Caller holds s.mu.
func (s *PageService) update(ctx context.Context, p *domain.Page, title string, blocks []domain.Block) (bool, error) {
	base := p.Clone()
	merged := false
	if s.catchUp(ctx) {
		p = s.keepPage(p)
		var n int
		title, blocks, n = mergePage(base, *p, title, blocks)
		merged = n > 0
		if merged {
			s.log.Info().Str("page", p.ID).Int("changes", n).Msg("kept edits made elsewhere")
		}
	}
	p.Title = title
	p.Blocks = domain.CloneBlocks(blocks)
	p.UpdatedAt = s.now().UTC()
	return merged, s.writePages(ctx)
}

// AppendBlock adds a block to the end of a page.
func (s *PageService) AppendBlock(ctx context.Context, pageID string, b domain.Block) (domain.Block, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.Type = domain.ParseBlockType(string(b.Type))

	s.mu.Lock()
	s.catchUp(ctx)
	p, ok := s.pages[pageID]
	if !ok {
		s.mu.Unlock()
		return domain.Block{}, fmt.Errorf("append block to %q: %w", pageID, domain.ErrNotFound)
	}
	p.Blocks = append(p.Blocks, b)
	p.UpdatedAt = s.now().UTC()
	err := s.writePages(ctx)
	s.mu.Unlock()

	if err != nil {
		s.writeFailed(ctx, err)
	}
	s.emitPagesChanged(ctx)
	return b, nil
}

// ── Persistence ────────────────────────────────────────────

// Writes happen under s.mu so the store never sees an older collection
// after a newer one.

func (s *PageService) writePages(ctx context.Context) error {
	data, err := json.Marshal(s.pages)
	if err != nil {
		return fmt.Errorf("encode pages: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeyPages, string(data)); err != nil {
		return err
	}
	s.lastPages = string(data)
	return nil
}

func (s *PageService) writeCurrent(ctx context.Context, id string) error {
	return s.store.Set(ctx, domain.KeyCurrentPageID, id)
}

func (s *PageService) writeFailed(ctx context.Context, err error) {
	s.log.Error().Err(err).Msg("persist")
	msg := "Changes could not be saved."
	if errors.Is(err, context.Canceled) {
		msg = "Saving was interrupted."
	}
	s.emitter.Emit(ctx, domain.EventStoreNotice, msg)
}

func (s *PageService) emitPagesChanged(ctx context.Context) {
	s.mu.RLock()
	list := s.summaries()
	s.mu.RUnlock()
	s.emitter.Emit(ctx, domain.EventPagesChanged, list)
}
