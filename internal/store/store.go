// Package store persists the rules document and notifies subscribers of changes.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Extra-Chill/url-cleaner/internal/rules"
)

// ErrEmpty is returned by Load when no rules document has been stored yet.
var ErrEmpty = errors.New("rules store is empty")

// Change is published after the stored document changes.
type Change struct {
	Text     string
	Revision string
	At       time.Time
}

// Store manages the rules document with file-backed persistence.
type Store struct {
	mu   sync.Mutex // guards file writes and rev
	path string
	rev  string // revision last read or written

	subMu  sync.Mutex
	subs   map[int]chan Change
	nextID int

	flight singleflight.Group
	logger *slog.Logger
}

// New creates a Store that reads/writes the given file path.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		subs:   make(map[int]chan Change),
		logger: logger,
	}
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored document.
// It returns ErrEmpty when the file does not exist.
func (s *Store) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.read()
	if err != nil {
		return "", err
	}
	s.rev = rules.Revision(text)
	return text, nil
}

// Apply reads the stored document and passes it to load with the write lock
// held, so a concurrent Save cannot land between the read and the load.
// It returns what load returned.
func (s *Store) Apply(load func(text string) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.read()
	if err != nil {
		return false, err
	}
	return load(text), nil
}

// Save replaces the stored document and notifies subscribers when it changed.
func (s *Store) Save(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(text)
}

// EnsureDefault writes seed when nothing is stored yet.
// It reports whether the seed was written.
func (s *Store) EnsureDefault(seed string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.read()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrEmpty) {
		return false, err
	}

	if err := s.save(seed); err != nil {
		return false, err
	}
	s.logger.Info("seeded default rules", "path", s.path)
	return true, nil
}

// Subscribe returns a channel that receives every change.
// A slow subscriber only sees the latest change; Save never blocks on it.
// The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) publish(c Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- c:
			continue
		default:
		}
		// Replace the pending change with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c:
		default:
		}
	}
}

func (s *Store) read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrEmpty
		}
		return "", fmt.Errorf("read rules: %w", err)
	}
	return string(data), nil
}

// save must be called with s.mu held.
func (s *Store) save(text string) error {
	if err := writeAtomic(s.path, []byte(text)); err != nil {
		return err
	}

	rev := rules.Revision(text)
	if rev == s.rev {
		return nil
	}
	s.rev = rev
	s.publish(Change{Text: text, Revision: rev, At: time.Now()})
	return nil
}

// writeAtomic writes data to a temp file in the same directory and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create rules dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write rules: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod rules: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close rules: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename rules: %w", err)
	}
	return nil
}
