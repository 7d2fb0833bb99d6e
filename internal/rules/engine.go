package rules

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// snapshot is one loaded rules document.
type snapshot struct {
	rules    *RuleSet
	text     string
	revision string
	loadedAt time.Time
}

// Engine holds the active RuleSet and cleans URLs against it.
// Thread-safe for concurrent access: readers see either the old or the new
// RuleSet, never a mix.
type Engine struct {
	current atomic.Pointer[snapshot]

	mu sync.Mutex // serializes loads

	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used to report reloads.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine with an empty RuleSet.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.current.Store(&snapshot{rules: newRuleSet(), revision: Revision(""), loadedAt: e.now()})
	return e
}

// LoadText parses a rules document and makes it active.
// It reports false when the document is identical to the active one.
func (e *Engine) LoadText(text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.swap(text, Parse(text))
}

func (e *Engine) swap(text string, rs *RuleSet) bool {
	rev := Revision(text)
	if prev := e.current.Load(); prev != nil && prev.revision == rev {
		return false
	}

	e.current.Store(&snapshot{rules: rs, text: text, revision: rev, loadedAt: e.now()})

	st := rs.Stats()
	e.logger.Info("rules loaded",
		"revision", short(rev),
		"patterns", st.Total(),
		"domains", st.Domains,
		"dropped", len(Lint(text)),
	)
	return true
}

// Current returns the active RuleSet. It must not be modified.
func (e *Engine) Current() *RuleSet {
	return e.current.Load().rules
}

// Text returns the active rules document.
func (e *Engine) Text() string {
	return e.current.Load().text
}

// Revision returns the digest of the active rules document.
func (e *Engine) Revision() string {
	return e.current.Load().revision
}

// LoadedAt returns when the active rules were loaded.
func (e *Engine) LoadedAt() time.Time {
	return e.current.Load().loadedAt
}

// Stats returns pattern counts for the active RuleSet.
func (e *Engine) Stats() Stats {
	return e.Current().Stats()
}

// RuleCount returns the number of loaded patterns and whitelisted domains.
func (e *Engine) RuleCount() int {
	return e.Stats().Total()
}

// Clean removes every tracking parameter the active rules match.
func (e *Engine) Clean(rawURL string) string {
	return CleanAll(rawURL, e.Current())
}

// Trace cleans rawURL and returns the decision of every pass.
func (e *Engine) Trace(rawURL string) (string, []Decision) {
	return Trace(rawURL, e.Current())
}

func short(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
