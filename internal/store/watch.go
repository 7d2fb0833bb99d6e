package store

import (
	"context"
	"errors"
	"time"

	"github.com/Extra-Chill/url-cleaner/internal/rules"
)

// Check rereads the file and publishes a change if it was edited outside the store.
// Concurrent calls share one read.
func (s *Store) Check() (bool, error) {
	v, err, _ := s.flight.Do("check", func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		text, err := s.read()
		if errors.Is(err, ErrEmpty) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		rev := rules.Revision(text)
		if rev == s.rev {
			return false, nil
		}
		s.rev = rev
		s.publish(Change{Text: text, Revision: rev, At: time.Now()})
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Watch polls the file every interval until ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changed, err := s.Check()
			if err != nil {
				s.logger.Warn("rules check failed", "path", s.path, "error", err)
				continue
			}
			if changed {
				s.logger.Info("rules file changed", "path", s.path)
			}
		}
	}
}
