// Package logging builds the zerolog logger every component receives and
// adapts it to the Wails runtime logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/logger"
)

const permission = 0o664

// Options selects where logs go and how verbose they are.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// File appends JSON lines to a file instead of writing to Writer.
	File string
	// Writer receives human-readable output. Defaults to stderr.
	Writer io.Writer
}

// Log is a configured logger and the file it may hold open.
type Log struct {
	zerolog.Logger
	file *os.File
}

// New builds a logger from opts.
func New(opts Options) (*Log, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	l := &Log{}
	var w io.Writer
	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		l.file, err = os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = zerolog.SyncWriter(l.file)
	case opts.Writer != nil:
		w = opts.Writer
	default:
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	l.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return l, nil
}

// Close releases the log file, if any.
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel accepts zerolog level names, plus "warning".
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// WailsLevel maps a zerolog level to the Wails runtime's level.
func WailsLevel(level zerolog.Level) logger.LogLevel {
	switch {
	case level <= zerolog.TraceLevel:
		return logger.TRACE
	case level == zerolog.DebugLevel:
		return logger.DEBUG
	case level == zerolog.InfoLevel:
		return logger.INFO
	case level == zerolog.WarnLevel:
		return logger.WARNING
	default:
		return logger.ERROR
	}
}

// ── Wails adapter ──────────────────────────────────────────

// WailsLogger routes the Wails runtime's own log lines through zerolog.
type WailsLogger struct {
	log zerolog.Logger
}

var _ logger.Logger = (*WailsLogger)(nil)

func NewWailsLogger(log zerolog.Logger) *WailsLogger {
	return &WailsLogger{log: log.With().Str("component", "wails").Logger()}
}

func (w *WailsLogger) Print(message string)   { w.log.Log().Msg(message) }
func (w *WailsLogger) Trace(message string)   { w.log.Trace().Msg(message) }
func (w *WailsLogger) Debug(message string)   { w.log.Debug().Msg(message) }
func (w *WailsLogger) Info(message string)    { w.log.Info().Msg(message) }
func (w *WailsLogger) Warning(message string) { w.log.Warn().Msg(message) }
func (w *WailsLogger) Error(message string)   { w.log.Error().Msg(message) }

// Fatal logs and exits, as the Wails logger contract requires.
func (w *WailsLogger) Fatal(message string) { w.log.Fatal().Msg(message) }
