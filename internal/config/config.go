// Package config loads precario settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "precario.yaml"

// Config holds all precario configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Auth    AuthConfig    `yaml:"auth"`
	Labels  LabelsConfig  `yaml:"labels"`
	Display DisplayConfig `yaml:"display"`
	Import  ImportConfig  `yaml:"import"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// StoreConfig selects the catalog backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite, bolt
	Path   string `yaml:"path"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// AuthConfig configures sign-in.
type AuthConfig struct {
	Disabled     bool         `yaml:"disabled"`
	SessionTTL   string       `yaml:"session_ttl"`
	CookieSecure bool         `yaml:"cookie_secure"`
	Users        []UserConfig `yaml:"users,omitempty"`
}

// UserConfig is one staff account. PasswordHash is a bcrypt hash as printed
// by "precario user hash-password".
type UserConfig struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
}

// LabelsConfig configures label rendering.
type LabelsConfig struct {
	AssetsDir string    `yaml:"assets_dir"`
	PDF       PDFConfig `yaml:"pdf"`
}

// PDFConfig configures headless Chrome printing.
type PDFConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bin     string `yaml:"bin"` // empty: let the launcher find or download a browser
	Timeout string `yaml:"timeout"`
}

// DisplayConfig guards the TV feed.
type DisplayConfig struct {
	Token string `yaml:"token"`
}

// ImportConfig configures the inbox watcher.
type ImportConfig struct {
	InboxDir string `yaml:"inbox_dir"` // empty disables the watcher
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "60s",
			ShutdownTimeout: "10s",
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "data/precario.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			SessionTTL: "12h",
		},
		Labels: LabelsConfig{
			AssetsDir: "assets/labels",
			PDF: PDFConfig{
				Timeout: "30s",
			},
		},
		Import: ImportConfig{
			Debounce: "500ms",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies PRECARIO_* environment variables.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("PRECARIO_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if path := os.Getenv("PRECARIO_DB"); path != "" {
		c.Store.Path = path
	}
	if driver := os.Getenv("PRECARIO_DRIVER"); driver != "" {
		c.Store.Driver = driver
	}
	if level := os.Getenv("PRECARIO_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if token := os.Getenv("PRECARIO_DISPLAY_TOKEN"); token != "" {
		c.Display.Token = token
	}
	if inbox := os.Getenv("PRECARIO_INBOX"); inbox != "" {
		c.Import.InboxDir = inbox
	}
}

// GetReadTimeout returns the server read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the server write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 60*time.Second)
}

// GetShutdownTimeout returns the graceful shutdown budget.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetSessionTTL returns the session lifetime.
func (c *Config) GetSessionTTL() time.Duration {
	return parseDuration(c.Auth.SessionTTL, 12*time.Hour)
}

// GetPDFTimeout returns the per-document PDF render budget.
func (c *Config) GetPDFTimeout() time.Duration {
	return parseDuration(c.Labels.PDF.Timeout, 30*time.Second)
}

// GetImportDebounce returns the quiet period before an inbox file is read.
func (c *Config) GetImportDebounce() time.Duration {
	return parseDuration(c.Import.Debounce, 500*time.Millisecond)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// ValidDrivers lists the supported store drivers.
var ValidDrivers = []string{"sqlite", "bolt"}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if !contains(ValidDrivers, c.Store.Driver) {
		return fmt.Errorf("invalid store driver: %s (valid: %v)", c.Store.Driver, ValidDrivers)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store path not configured (set store.path or PRECARIO_DB)")
	}
	if !contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	durations := []struct{ key, value string }{
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"auth.session_ttl", c.Auth.SessionTTL},
		{"labels.pdf.timeout", c.Labels.PDF.Timeout},
		{"import.debounce", c.Import.Debounce},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q", d.key, d.value)
		}
	}

	for i, u := range c.Auth.Users {
		if strings.TrimSpace(u.Email) == "" {
			return fmt.Errorf("auth.users[%d]: email is required", i)
		}
		if !strings.HasPrefix(u.PasswordHash, "$2") {
			return fmt.Errorf("auth.users[%d] (%s): password_hash must be a bcrypt hash", i, u.Email)
		}
	}

	return nil
}

// RequireUsers reports the serve-time auth check: at least one user must be
// configured unless auth is explicitly disabled.
func (c *Config) RequireUsers() error {
	if c.Auth.Disabled || len(c.Auth.Users) > 0 {
		return nil
	}
	return fmt.Errorf("no users configured: add auth.users (see 'precario user hash-password') or set auth.disabled: true")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
