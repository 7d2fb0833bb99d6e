package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const DefaultBufferSize = 500

// Entry is one captured log record.
type Entry struct {
	Time  time.Time `json:"time"`
	Level string    `json:"level"`
	Msg   string    `json:"msg"`
	Attrs string    `json:"attrs,omitempty"` // key=value pairs
}

// Buffer keeps the most recent log entries in memory.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	size    int
}

// NewBuffer creates a Buffer holding at most size entries.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Buffer{size: size}
}

// Entries returns buffered entries newest-first, at most limit (0 means all).
func (b *Buffer) Entries(limit int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		out[i] = b.entries[len(b.entries)-1-i]
	}
	return out
}

func (b *Buffer) add(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) >= b.size {
		b.entries = b.entries[1:]
	}
	b.entries = append(b.entries, e)
}

// Handler returns a slog.Handler that records into b at the given minimum level.
func (b *Buffer) Handler(level slog.Level) slog.Handler {
	return &bufferHandler{buf: b, level: level}
}

type bufferHandler struct {
	buf    *Buffer
	level  slog.Level
	attrs  []slog.Attr
	prefix string // group path
}

func (h *bufferHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *bufferHandler) Handle(_ context.Context, r slog.Record) error {
	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		parts = append(parts, formatAttr("", a))
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, formatAttr(h.prefix, a))
		return true
	})
	h.buf.add(Entry{
		Time:  r.Time,
		Level: r.Level.String(),
		Msg:   r.Message,
		Attrs: strings.Join(parts, " "),
	})
	return nil
}

func (h *bufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	combined = append(combined, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		combined = append(combined, a)
	}
	return &bufferHandler{buf: h.buf, level: h.level, attrs: combined, prefix: h.prefix}
}

func (h *bufferHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &bufferHandler{buf: h.buf, level: h.level, attrs: h.attrs, prefix: h.prefix + name + "."}
}

func formatAttr(prefix string, a slog.Attr) string {
	key := prefix + a.Key
	v := a.Value.Resolve()

	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}

	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%s=%q", key, s)
	}
	return key + "=" + s
}
