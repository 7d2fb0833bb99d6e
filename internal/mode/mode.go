// Package mode manages the operating mode of the cleaner.
package mode

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrInvalidMode is returned by Parse for unknown mode names.
var ErrInvalidMode = errors.New("invalid mode")

// Mode represents the operating mode of the cleaner.
type Mode string

const (
	// Enforce is normal operation - rewrite URLs the rules change.
	Enforce Mode = "enforce"
	// Audit records would-be rewrites but never rewrites (testing rules).
	Audit Mode = "audit"
	// Off disables cleaning entirely.
	Off Mode = "off"
)

// Parse converts a mode name into a Mode.
func Parse(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Enforce, Audit, Off:
		return m, nil
	}
	return "", fmt.Errorf("%w %q (want enforce, audit or off)", ErrInvalidMode, s)
}

// Manager handles global and per-client mode settings.
type Manager struct {
	mu          sync.RWMutex
	globalMode  Mode
	clientModes map[string]Mode // client IP -> mode override
}

// NewManager creates a new mode manager with enforce as default.
func NewManager() *Manager {
	return &Manager{
		globalMode:  Enforce,
		clientModes: make(map[string]Mode),
	}
}

// GlobalMode returns the current global mode.
func (m *Manager) GlobalMode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.globalMode
}

// SetGlobalMode sets the global operating mode.
func (m *Manager) SetGlobalMode(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.globalMode = mode
}

// ClientMode returns the effective mode for a client.
// Returns the client-specific override if set, otherwise global mode.
func (m *Manager) ClientMode(client string) Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mode, ok := m.clientModes[client]; ok {
		return mode
	}
	return m.globalMode
}

// SetClientMode sets a mode override for a specific client.
func (m *Manager) SetClientMode(client string, mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clientModes[client] = mode
}

// ClearClientMode removes the mode override for a client (reverts to global).
func (m *Manager) ClearClientMode(client string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clientModes, client)
}

// AllClientModes returns a copy of all client mode overrides.
func (m *Manager) AllClientModes() map[string]Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]Mode, len(m.clientModes))
	for k, v := range m.clientModes {
		result[k] = v
	}
	return result
}

// Resolve decides what to do with a URL the rules would change.
// In Enforce mode, rewrite is the provided changed value.
// In Audit mode, rewrite is always false and audit reports changed.
// In Off mode, both are false.
func (m *Manager) Resolve(client string, changed bool) (rewrite, audit bool) {
	switch m.ClientMode(client) {
	case Audit:
		return false, changed
	case Off:
		return false, false
	default:
		return changed, false
	}
}

// Enabled returns whether cleaning runs at all for the client.
func (m *Manager) Enabled(client string) bool {
	return m.ClientMode(client) != Off
}
