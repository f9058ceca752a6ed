package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"blocknote/internal/domain"
	"blocknote/internal/export"
)

// ─────────────────────────────────────────────────────────────
// Backup Service: scheduled export of every page
// ─────────────────────────────────────────────────────────────

// PageSource is the read side of PageService that backups need.
type PageSource interface {
	AllPages() []domain.Page
}

// BackupResult summarizes one backup run.
type BackupResult struct {
	Dir      string    `json:"dir"`
	Files    []string  `json:"files"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

const backupJobID = "backup"

// ErrBackupRunning is returned when a run is requested while one is in progress.
var ErrBackupRunning = errors.New("backup already running")

// BackupService writes a snapshot of all pages into a timestamped
// directory, on demand or on a cron schedule.
type BackupService struct {
	pages   PageSource
	dir     string
	format  export.Format
	emitter EventEmitter
	log     zerolog.Logger
	running jobGuard
	now     func() time.Time

	mu        sync.Mutex
	cronSched *cron.Cron
}

// NewBackupService creates a BackupService exporting into dir.
func NewBackupService(pages PageSource, dir string, format export.Format, emitter EventEmitter, log zerolog.Logger) *BackupService {
	return &BackupService{
		pages:   pages,
		dir:     dir,
		format:  format,
		emitter: emitter,
		log:     log.With().Str("component", "backup").Logger(),
		now:     time.Now,
	}
}

// Run exports every page once.
func (s *BackupService) Run(ctx context.Context) (*BackupResult, error) {
	if !s.running.TryLock(backupJobID) {
		return nil, ErrBackupRunning
	}
	defer s.running.Unlock(backupJobID)

	start := s.now()
	res := &BackupResult{
		Dir:     filepath.Join(s.dir, start.UTC().Format("20060102-150405")),
		Started: start,
	}
	used := make(map[string]bool)
	for _, page := range s.pages.AllPages() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		// Pages whose titles slug alike must not overwrite each other.
		slug := export.Slug(page.Title, page.ID)
		name := slug
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", slug, n)
		}
		used[name] = true
		path, err := export.WriteNamed(res.Dir, name, s.format, page)
		if err != nil {
			return res, fmt.Errorf("backup page %s: %w", page.ID, err)
		}
		res.Files = append(res.Files, path)
	}
	res.Finished = s.now()

	s.log.Info().Str("dir", res.Dir).Int("pages", len(res.Files)).Msg("backup written")
	s.emitter.Emit(ctx, domain.EventBackupFinished, res)
	return res, nil
}

// Start schedules Run on a cron expression. An empty schedule disables
// backups. Calling Start again replaces the previous schedule.
func (s *BackupService) Start(schedule string) error {
	s.Stop()
	if schedule == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if s.Running() {
			s.log.Warn().Msg("previous backup still running, skipping")
			return
		}
		if _, err := s.Run(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("scheduled backup failed")
		}
	})
	if err != nil {
		return fmt.Errorf("backup schedule %q: %w", schedule, err)
	}
	c.Start()

	s.mu.Lock()
	s.cronSched = c
	s.mu.Unlock()
	s.log.Info().Str("schedule", schedule).Msg("backups scheduled")
	return nil
}

// Stop cancels the schedule. Runs already in progress finish.
func (s *BackupService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}

// Running reports whether a backup is being written.
func (s *BackupService) Running() bool {
	return s.running.Running(backupJobID)
}

// WaitRunning blocks until an in-progress run finishes or ctx is cancelled.
// Used for graceful shutdown.
func (s *BackupService) WaitRunning(ctx context.Context) {
	s.running.WaitAll(ctx)
}
