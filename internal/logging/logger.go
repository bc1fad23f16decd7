package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-tangra/go-tangra-tailscale-inventory/internal/config"
)

// Logger wraps slog.Logger with the tool's default attributes.
//
// Output always goes to stderr (or the writer given to NewWithWriter) so that
// stdout carries nothing but the inventory document Ansible parses.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing to stderr.
func New(cfg config.LoggingConfig, version string) *Logger {
	return NewWithWriter(os.Stderr, cfg, version)
}

// NewWithWriter creates a Logger writing to w.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, version string) *Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "tailscale-inventory"),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// parseLevel converts a string log level to slog.Level.
// Unrecognised values fall back to warn, the quiet default for inventory runs.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// With returns a new Logger with additional default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Discard returns a Logger that drops everything. Used by tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
