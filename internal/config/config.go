package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UpstreamConfig points at the Sportarr backend API.
type UpstreamConfig struct {
	// URL is the backend base URL, e.g. "http://127.0.0.1:7878".
	URL string `yaml:"url" json:"url"`
	// APIKey is sent as X-Api-Key on every request. Never logged.
	APIKey string `yaml:"api_key" json:"api_key"`
}

// SnapshotConfig controls the headless-browser calendar capture.
type SnapshotConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API and calendar page.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA display timezone applied to every schedule
	// computation unless a request overrides it. There is no fallback to
	// the process-local zone; an invalid value fails startup.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// periodic upstream refreshes.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// CacheDir is where the upstream HTTP cache lives. Empty means the
	// runtime default (/var/lib/schedarr/cache, or ./cache in debug mode).
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// HorizonDays bounds how far ahead the iCal feed and refresh window
	// reach.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	Upstream UpstreamConfig `yaml:"upstream" json:"upstream"`

	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8787",
		Timezone:    "UTC",
		RefreshCron: "*/15 * * * *",
		LogLevel:    "info",
		HorizonDays: 28,
		Upstream: UpstreamConfig{
			URL: "http://127.0.0.1:7878",
		},
		Snapshot: SnapshotConfig{
			Width:  1280,
			Height: 800,
		},
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs from older versions still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8787"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 28
	}
	if c.Upstream.URL == "" {
		c.Upstream.URL = "http://127.0.0.1:7878"
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = 1280
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = 800
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create the parent directory, write a
//     default config with 0600 perms, and return the defaults.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with the error so the
				// caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to the given path: parent directory 0700,
// atomic temp-file + rename, final permissions 0600 (the file carries the
// API key).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".schedarr-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save so callers holding a *Config can
// write it back directly.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
