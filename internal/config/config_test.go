package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Extra-Chill/url-cleaner/internal/mode"
)

func TestDefaultsValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.Clipboard.Timeout)
	assert.Equal(t, mode.Enforce, cfg.ParsedMode())
	assert.Equal(t, "rules.txt", filepath.Base(cfg.Rules.File))
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoad(t *testing.T) {
	t.Setenv("URLC_TEST_TOKEN", "s3cret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
mode: audit
proxy:
  listen: "127.0.0.1:3128"
api:
  token: ${URLC_TEST_TOKEN}
rules:
  file: /tmp/rules.txt
  watch_interval: 500ms
clipboard:
  timeout: 2s
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, mode.Audit, cfg.ParsedMode())
	assert.Equal(t, "127.0.0.1:3128", cfg.Proxy.Listen)
	assert.Equal(t, "s3cret", cfg.API.Token)
	assert.Equal(t, "/tmp/rules.txt", cfg.Rules.File)
	assert.Equal(t, 500*time.Millisecond, cfg.Rules.WatchInterval)
	assert.Equal(t, 2*time.Second, cfg.Clipboard.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)

	// unset fields keep defaults
	assert.Equal(t, Defaults().API.Listen, cfg.API.Listen)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadKeepsUnsetEnvReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  token: ${URLC_TEST_UNSET_VAR}\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${URLC_TEST_UNSET_VAR}", cfg.API.Token)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "mode: [unclosed"},
		{"bad mode", "mode: lockdown"},
		{"bad listen", "proxy:\n  listen: nonsense"},
		{"bad format", "log:\n  format: xml"},
		{"zero timeout", "clipboard:\n  timeout: 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestValidateModeError(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "lockdown"
	assert.ErrorIs(t, cfg.Validate(), mode.ErrInvalidMode)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Mode = "off"
	cfg.Proxy.Listen = ""

	require.NoError(t, Save(path, &cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}

func TestClients(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
mode: audit
clients:
  - ip: 192.168.1.20
    name: kids tablet
    mode: enforce
  - ip: "::1"
    mode: off
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Clients, 2)
	assert.Equal(t, "kids tablet", cfg.Clients[0].Name)

	m := mode.NewManager()
	cfg.ApplyClients(m)
	assert.Equal(t, mode.Audit, m.GlobalMode())
	assert.Equal(t, mode.Enforce, m.ClientMode("192.168.1.20"))
	assert.Equal(t, mode.Off, m.ClientMode("::1"))
	assert.Equal(t, mode.Audit, m.ClientMode("10.0.0.1"))
}

func TestValidateClients(t *testing.T) {
	cfg := Defaults()
	cfg.Clients = []ClientConfig{
		{IP: "not-an-ip", Mode: "enforce"},
		{IP: "10.0.0.1", Mode: "sometimes"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clients[0].ip")
	assert.ErrorIs(t, err, mode.ErrInvalidMode)
}
