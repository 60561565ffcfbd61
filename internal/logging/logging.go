// Package logging builds the application's zerolog logger. Output goes to a
// file because the terminal belongs to the TUI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects format, level and destination.
type Config struct {
	Env   string // development -> readable console format; anything else -> JSON
	Level string // trace, debug, info, warn, error
	Path  string // empty discards output
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New opens the log file and returns a logger writing to it. The returned
// closer releases the file.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	var out io.Writer = io.Discard
	var closer io.Closer = nopCloser{}
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("mkdir log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}
	zl := NewWithWriter(cfg, out)
	// Redirect the global logger for libraries that use it.
	log.Logger = zl
	return zl, closer, nil
}

// NewWithWriter builds a logger on w without touching the global logger.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.Env, "development") {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to zerolog; unknown names mean info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
