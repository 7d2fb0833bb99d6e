// Package history keeps a bounded in-memory log of cleaning decisions.
package history

import (
	"sync"
	"time"
)

const DefaultLimit = 1000

// Source identifies where a URL came from.
type Source string

const (
	SourceNavigation Source = "navigation"
	SourceClipboard  Source = "clipboard"
	SourceAPI        Source = "api"
)

// Action is what happened to the URL.
type Action string

const (
	ActionCleaned   Action = "cleaned"
	ActionAudit     Action = "audit" // would have been cleaned
	ActionUnchanged Action = "unchanged"
)

// Event is one recorded decision.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Source    Source    `json:"source"`
	Client    string    `json:"client,omitempty"`
	Original  string    `json:"original"`
	Cleaned   string    `json:"cleaned,omitempty"`
	Action    Action    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
}

// Totals counts every event ever added, including evicted ones.
type Totals struct {
	Cleaned   int `json:"cleaned"`
	Audit     int `json:"audit"`
	Unchanged int `json:"unchanged"`
}

// Log stores events in memory, dropping the oldest beyond its limit.
type Log struct {
	mu     sync.RWMutex
	events []Event
	limit  int
	totals Totals
	now    func() time.Time
}

// New creates a Log with a limit.
func New(limit int) *Log {
	return NewWithClock(limit, func() time.Time { return time.Now().UTC() })
}

// NewWithClock creates a Log with a custom clock.
func NewWithClock(limit int, now func() time.Time) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if now == nil {
		panic("history: nil clock")
	}
	return &Log{
		events: make([]Event, 0, min(limit, 64)),
		limit:  limit,
		now:    now,
	}
}

// Add stores an event. A zero Timestamp is set from the clock.
func (l *Log) Add(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)
	if len(l.events) > l.limit {
		l.events = l.events[len(l.events)-l.limit:]
	}

	switch event.Action {
	case ActionCleaned:
		l.totals.Cleaned++
	case ActionAudit:
		l.totals.Audit++
	case ActionUnchanged:
		l.totals.Unchanged++
	}
}

// Record is a shorthand for Add.
func (l *Log) Record(source Source, client, original, cleaned string, action Action) {
	l.Add(Event{
		Source:   source,
		Client:   client,
		Original: original,
		Cleaned:  cleaned,
		Action:   action,
	})
}

// List returns a paginated list of events, oldest first, and the number held.
func (l *Log) List(offset, limit int) ([]Event, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := len(l.events)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = total
	}

	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	result := make([]Event, end-start)
	copy(result, l.events[start:end])
	return result, total
}

// Totals returns the all-time action counts.
func (l *Log) Totals() Totals {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totals
}
