// Package config loads the url-cleaner configuration file.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Extra-Chill/url-cleaner/internal/mode"
)

var envVarRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Config is the top-level application configuration.
type Config struct {
	Mode string `yaml:"mode"` // "enforce", "audit" or "off"

	Proxy     ProxyConfig     `yaml:"proxy"`
	API       APIConfig       `yaml:"api"`
	Rules     RulesConfig     `yaml:"rules"`
	Log       LogConfig       `yaml:"log"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	History   HistoryConfig   `yaml:"history"`

	Clients []ClientConfig `yaml:"clients,omitempty"`
}

// ProxyConfig holds navigation proxy settings.
type ProxyConfig struct {
	Listen      string   `yaml:"listen"`                 // empty disables the proxy
	IgnoreHosts []string `yaml:"ignore_hosts,omitempty"` // adblock-style host rules never rewritten
}

// APIConfig holds management API settings.
type APIConfig struct {
	Listen string `yaml:"listen"`
	Token  string `yaml:"token"` // bearer token for every endpoint but /health; empty disables auth
	URL    string `yaml:"url"`   // base URL used by --remote clients
}

// RulesConfig holds rules storage settings.
type RulesConfig struct {
	File          string        `yaml:"file"`
	WatchInterval time.Duration `yaml:"watch_interval"` // 0 disables polling
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// ClipboardConfig holds clipboard relay settings.
type ClipboardConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// HistoryConfig holds history log settings.
type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

// ClientConfig pins a mode for one client IP.
type ClientConfig struct {
	IP   string `yaml:"ip"`
	Name string `yaml:"name,omitempty"` // human-readable label
	Mode string `yaml:"mode"`
}

// Defaults returns a Config with built-in defaults.
func Defaults() Config {
	return Config{
		Mode:  string(mode.Enforce),
		Proxy: ProxyConfig{Listen: "127.0.0.1:8118"},
		API: APIConfig{
			Listen: "127.0.0.1:9191",
			URL:    "http://127.0.0.1:9191",
		},
		Rules: RulesConfig{
			File:          filepath.Join(DefaultDir(), "rules.txt"),
			WatchInterval: 2 * time.Second,
		},
		Log:       LogConfig{Level: "info", Format: "text"},
		Clipboard: ClipboardConfig{Timeout: 5 * time.Second},
		History:   HistoryConfig{Limit: 1000},
	}
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".url-cleaner"
	}
	return filepath.Join(dir, "url-cleaner")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads the config from path. If the file doesn't exist, returns defaults.
// ${VAR} references are replaced with environment values; unset variables are kept.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	content := envVarRegex.ReplaceAllStringFunc(string(data), func(match string) string {
		if value := os.Getenv(match[2 : len(match)-1]); value != "" {
			return value
		}
		return match
	})

	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	var errs []error

	if _, err := mode.Parse(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Proxy.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Proxy.Listen); err != nil {
			errs = append(errs, fmt.Errorf("proxy.listen: %w", err))
		}
	}
	if c.API.Listen != "" {
		if _, _, err := net.SplitHostPort(c.API.Listen); err != nil {
			errs = append(errs, fmt.Errorf("api.listen: %w", err))
		}
	}
	if c.Rules.File == "" {
		errs = append(errs, errors.New("rules.file is required"))
	}
	if c.Rules.WatchInterval < 0 {
		errs = append(errs, errors.New("rules.watch_interval must not be negative"))
	}
	if c.Clipboard.Timeout <= 0 {
		errs = append(errs, errors.New("clipboard.timeout must be positive"))
	}
	if c.History.Limit < 0 {
		errs = append(errs, errors.New("history.limit must not be negative"))
	}
	for i, cc := range c.Clients {
		if net.ParseIP(cc.IP) == nil {
			errs = append(errs, fmt.Errorf("clients[%d].ip %q: not an IP address", i, cc.IP))
		}
		if _, err := mode.Parse(cc.Mode); err != nil {
			errs = append(errs, fmt.Errorf("clients[%d]: %w", i, err))
		}
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want text or json", c.Log.Format))
	}

	return errors.Join(errs...)
}

// ParsedMode returns Mode as a mode.Mode. Validate must have passed.
func (c *Config) ParsedMode() mode.Mode {
	m, err := mode.Parse(c.Mode)
	if err != nil {
		return mode.Enforce
	}
	return m
}

// ApplyClients sets the configured global mode and client overrides on m.
// Validate must have passed.
func (c *Config) ApplyClients(m *mode.Manager) {
	m.SetGlobalMode(c.ParsedMode())
	for _, cc := range c.Clients {
		if cm, err := mode.Parse(cc.Mode); err == nil {
			m.SetClientMode(cc.IP, cm)
		}
	}
}
