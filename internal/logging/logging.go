// Package logging builds the process logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a structured logger that writes to stderr and keeps recent
// entries in a Buffer. format is "json" or "text".
func New(level, format string) (*slog.Logger, *Buffer) {
	return NewWriter(os.Stderr, level, format)
}

// NewWriter is New with a custom output.
func NewWriter(w io.Writer, level, format string) (*slog.Logger, *Buffer) {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{Level: lvl}

	var out slog.Handler
	if strings.EqualFold(format, "json") {
		out = slog.NewJSONHandler(w, opts)
	} else {
		out = slog.NewTextHandler(w, opts)
	}

	buf := NewBuffer(DefaultBufferSize)
	return slog.New(&fanout{
		level:    lvl,
		handlers: []slog.Handler{out, buf.Handler(lvl)},
	}), buf
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fanout sends each record to every handler that accepts its level.
type fanout struct {
	level    slog.Level
	handlers []slog.Handler
}

func (f *fanout) Enabled(_ context.Context, l slog.Level) bool { return l >= f.level }

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *fanout) derive(fn func(slog.Handler) slog.Handler) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = fn(h)
	}
	return &fanout{level: f.level, handlers: hs}
}
