package mode

import (
	"errors"
	"sync"
	"testing"
)

func TestNewManager_DefaultModeIsEnforce(t *testing.T) {
	m := NewManager()

	if got := m.GlobalMode(); got != Enforce {
		t.Errorf("NewManager() GlobalMode = %q, want %q", got, Enforce)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"enforce", Enforce, false},
		{"AUDIT", Audit, false},
		{" off ", Off, false},
		{"lockdown", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidMode) {
				t.Errorf("Parse(%q) err = %v, want ErrInvalidMode", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSetGlobalMode(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
	}{
		{"set to audit", Audit},
		{"set to off", Off},
		{"set to enforce", Enforce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			m.SetGlobalMode(tt.mode)

			if got := m.GlobalMode(); got != tt.mode {
				t.Errorf("GlobalMode() = %q, want %q", got, tt.mode)
			}
		})
	}
}

func TestClientModeOverride(t *testing.T) {
	m := NewManager()
	client := "10.0.0.5"

	// Without override, should return global mode
	if got := m.ClientMode(client); got != Enforce {
		t.Errorf("ClientMode() without override = %q, want %q", got, Enforce)
	}

	m.SetClientMode(client, Audit)
	if got := m.ClientMode(client); got != Audit {
		t.Errorf("ClientMode() with override = %q, want %q", got, Audit)
	}

	other := "10.0.0.6"
	if got := m.ClientMode(other); got != Enforce {
		t.Errorf("ClientMode() for other client = %q, want %q", got, Enforce)
	}

	// Change global mode - client with override unaffected
	m.SetGlobalMode(Off)
	if got := m.ClientMode(client); got != Audit {
		t.Errorf("ClientMode() after global change = %q, want %q", got, Audit)
	}
	if got := m.ClientMode(other); got != Off {
		t.Errorf("ClientMode() for other client after global change = %q, want %q", got, Off)
	}
}

func TestClearClientMode(t *testing.T) {
	m := NewManager()
	client := "10.0.0.5"

	m.SetClientMode(client, Audit)
	m.ClearClientMode(client)

	if got := m.ClientMode(client); got != Enforce {
		t.Errorf("ClientMode() after clear = %q, want %q", got, Enforce)
	}

	m.SetGlobalMode(Off)
	if got := m.ClientMode(client); got != Off {
		t.Errorf("ClientMode() after clear and global change = %q, want %q", got, Off)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		mode        Mode
		changed     bool
		wantRewrite bool
		wantAudit   bool
	}{
		{"enforce with change", Enforce, true, true, false},
		{"enforce without change", Enforce, false, false, false},
		{"audit with change", Audit, true, false, true},
		{"audit without change", Audit, false, false, false},
		{"off with change", Off, true, false, false},
		{"off without change", Off, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			client := "test-client"
			m.SetClientMode(client, tt.mode)

			rewrite, audit := m.Resolve(client, tt.changed)
			if rewrite != tt.wantRewrite || audit != tt.wantAudit {
				t.Errorf("Resolve(%q, %v) = (%v, %v), want (%v, %v)",
					client, tt.changed, rewrite, audit, tt.wantRewrite, tt.wantAudit)
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	m := NewManager()
	if !m.Enabled("a") {
		t.Error("Enabled() with enforce = false, want true")
	}
	m.SetClientMode("a", Audit)
	if !m.Enabled("a") {
		t.Error("Enabled() with audit = false, want true")
	}
	m.SetClientMode("a", Off)
	if m.Enabled("a") {
		t.Error("Enabled() with off = true, want false")
	}
}

func TestAllClientModes(t *testing.T) {
	m := NewManager()

	if modes := m.AllClientModes(); len(modes) != 0 {
		t.Errorf("AllClientModes() initial len = %d, want 0", len(modes))
	}

	m.SetClientMode("client-1", Audit)
	m.SetClientMode("client-2", Off)

	modes := m.AllClientModes()
	if len(modes) != 2 {
		t.Errorf("AllClientModes() len = %d, want 2", len(modes))
	}
	if modes["client-1"] != Audit {
		t.Errorf("AllClientModes()[client-1] = %q, want %q", modes["client-1"], Audit)
	}
	if modes["client-2"] != Off {
		t.Errorf("AllClientModes()[client-2] = %q, want %q", modes["client-2"], Off)
	}

	// Verify it's a copy (modifying returned map doesn't affect manager)
	modes["client-3"] = Enforce
	if len(m.AllClientModes()) != 2 {
		t.Error("AllClientModes() returned map was not a copy")
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := NewManager()
	const numGoroutines = 100
	const numIterations = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			client := "client"

			for j := 0; j < numIterations; j++ {
				switch j % 6 {
				case 0:
					m.SetGlobalMode(Audit)
				case 1:
					m.GlobalMode()
				case 2:
					m.SetClientMode(client, Off)
				case 3:
					m.ClientMode(client)
				case 4:
					m.Resolve(client, true)
				case 5:
					m.ClearClientMode(client)
				}
			}
		}()
	}

	wg.Wait()
}
