package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// tests point HOME at temporary directories
	homedir.DisableCache = true
	os.Exit(m.Run())
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 800, cfg.Viewport.Width)
	assert.Equal(t, 600, cfg.Viewport.Height)
	assert.Equal(t, 30*time.Second, cfg.Network.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Script.Timeout)
	assert.True(t, cfg.Script.Enabled)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Empty(t, cfg.Logger.LogFile)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browser.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
viewport:
  width: 1024
network:
  timeout: 5s
script:
  enabled: false
logger:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Viewport.Width)
	assert.Equal(t, 600, cfg.Viewport.Height, "unset keys keep defaults")
	assert.Equal(t, 5*time.Second, cfg.Network.Timeout)
	assert.False(t, cfg.Script.Enabled)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BROWSER_VIEWPORT_HEIGHT", "900")
	t.Setenv("BROWSER_SCRIPT_TIMEOUT", "250ms")

	path := filepath.Join(t.TempDir(), "browser.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewport:\n  height: 700\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.Viewport.Height)
	assert.Equal(t, 250*time.Millisecond, cfg.Script.Timeout)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadSearchWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Viewport.Width)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "browser.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: loud\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger.level")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.Viewport.Width = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Logger.Format = "xml"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Network.Timeout = -time.Second
	assert.Error(t, bad.Validate())
}

func TestLogFileExpandsHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("BROWSER_LOGGER_LOG_FILE", "~/logs/browser.log")

	cfg, err := FromViper(NewViper())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs", "browser.log"), cfg.Logger.LogFile)
}
