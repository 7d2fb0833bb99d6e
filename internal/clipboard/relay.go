package clipboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Extra-Chill/url-cleaner/internal/history"
	"github.com/Extra-Chill/url-cleaner/internal/rules"
)

const (
	DefaultTimeout = 5 * time.Second

	// maxParallel bounds concurrent requests in CleanItems.
	maxParallel = 8
)

// TextCleaner cleans the URLs in a piece of text.
type TextCleaner interface {
	CleanText(ctx context.Context, text string) (string, error)
}

// LocalCleaner cleans text with an in-process engine.
type LocalCleaner struct {
	Engine *rules.Engine
}

// CleanText implements TextCleaner.
func (c LocalCleaner) CleanText(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return text, err
	}
	return CleanText(text, URLCleaner(c.Engine)), nil
}

// DocumentGuard returns a guard that matches text equal to the document
// returned by current, so copying the rules themselves leaves them intact.
func DocumentGuard(current func() string) func(string) bool {
	return func(text string) bool {
		doc := strings.TrimSpace(current())
		return doc != "" && strings.TrimSpace(text) == doc
	}
}

// Relay passes clipboard text to a TextCleaner and never fails:
// on timeout or error the original text is returned.
type Relay struct {
	cleaner TextCleaner
	timeout time.Duration
	guard   func(string) bool
	history *history.Log
	logger  *slog.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithTimeout bounds how long Clean waits for the cleaner.
func WithTimeout(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithGuard skips cleaning for text the guard matches.
func WithGuard(guard func(string) bool) Option {
	return func(r *Relay) {
		r.guard = guard
	}
}

// WithHistory records every changed text in h.
func WithHistory(h *history.Log) Option {
	return func(r *Relay) {
		r.history = h
	}
}

// WithLogger sets the relay logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRelay creates a Relay in front of cleaner.
func NewRelay(cleaner TextCleaner, opts ...Option) *Relay {
	r := &Relay{
		cleaner: cleaner,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type result struct {
	text string
	err  error
}

// Clean returns text with its URLs cleaned, or text unchanged when the
// cleaner fails or does not answer in time.
func (r *Relay) Clean(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	if r.guard != nil && r.guard(text) {
		r.logger.Debug("clipboard text matches guard, left as is")
		return text
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		cleaned, err := r.cleaner.CleanText(ctx, text)
		done <- result{cleaned, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		res.err = ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			r.logger.Warn("clipboard clean timed out", "timeout", r.timeout)
		} else {
			r.logger.Warn("clipboard clean failed", "error", res.err)
		}
		return text
	}
	if res.text == "" {
		return text
	}

	if res.text != text {
		r.logger.Info("clipboard cleaned", "urls", len(ExtractURLs(text)))
		if r.history != nil {
			r.history.Record(history.SourceClipboard, "", text, res.text, history.ActionCleaned)
		}
	}
	return res.text
}

// CleanItems cleans several clipboard items concurrently and keeps their order.
func (r *Relay) CleanItems(ctx context.Context, items []string) []string {
	out := make([]string, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, item := range items {
		g.Go(func() error {
			out[i] = r.Clean(gctx, item)
			return nil
		})
	}
	_ = g.Wait() // Clean never fails
	return out
}
