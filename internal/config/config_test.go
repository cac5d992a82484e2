package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Timezone = "America/New_York"
	cfg.Upstream.URL = "http://sportarr:7878"
	cfg.Upstream.APIKey = "secret"
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", got.Timezone)
	assert.Equal(t, "http://sportarr:7878", got.Upstream.URL)
	assert.Equal(t, "secret", got.Upstream.APIKey)
	require.NotNil(t, got.BasicAuth)
	assert.Equal(t, "u", got.BasicAuth.Username)
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	var cfg Config
	cfg.Normalize()

	assert.Equal(t, "127.0.0.1:8787", cfg.Listen)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 28, cfg.HorizonDays)
	assert.Equal(t, 1280, cfg.Snapshot.Width)
	assert.Equal(t, 800, cfg.Snapshot.Height)
}

func TestLoadEmptyPathFails(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}
