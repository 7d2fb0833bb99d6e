package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewWriterText(t *testing.T) {
	var out bytes.Buffer
	logger, buf := NewWriter(&out, "info", "text")

	logger.Debug("hidden")
	logger.Info("rules loaded", "patterns", 32, "path", "/tmp/my rules.txt")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "msg=\"rules loaded\"")

	entries := buf.Entries(0)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "rules loaded", entries[0].Msg)
	assert.Equal(t, `patterns=32 path="/tmp/my rules.txt"`, entries[0].Attrs)
}

func TestNewWriterJSON(t *testing.T) {
	var out bytes.Buffer
	logger, _ := NewWriter(&out, "debug", "json")

	logger.Debug("redirect", "url", "https://a.com/")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "redirect", rec["msg"])
	assert.Equal(t, "https://a.com/", rec["url"])
}

func TestWithAttrsAndGroup(t *testing.T) {
	var out bytes.Buffer
	logger, buf := NewWriter(&out, "info", "text")

	logger.With("component", "proxy").WithGroup("req").Info("handled", "status", 307)

	entries := buf.Entries(0)
	require.Len(t, entries, 1)
	assert.Equal(t, "component=proxy req.status=307", entries[0].Attrs)
	assert.True(t, strings.Contains(out.String(), "req.status=307"))
}

func TestErrorAttr(t *testing.T) {
	_, buf := NewWriter(&bytes.Buffer{}, "info", "text")
	logger := slog.New(buf.Handler(slog.LevelInfo))

	logger.Warn("check failed", "error", errors.New("permission denied"))

	entries := buf.Entries(0)
	require.Len(t, entries, 1)
	assert.Equal(t, `error="permission denied"`, entries[0].Attrs)
}

func TestBufferRing(t *testing.T) {
	b := NewBuffer(3)
	logger := slog.New(b.Handler(slog.LevelInfo))

	for _, m := range []string{"a", "b", "c", "d"} {
		logger.Info(m)
	}

	entries := b.Entries(0)
	require.Len(t, entries, 3)
	assert.Equal(t, "d", entries[0].Msg)
	assert.Equal(t, "b", entries[2].Msg)

	assert.Len(t, b.Entries(2), 2)
	assert.Equal(t, "d", b.Entries(1)[0].Msg)
}
