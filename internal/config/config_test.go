package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvLibrary, EnvEditor, EnvLogLevel, EnvConfig} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 120*time.Second, cfg.Watcher.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Watcher.PollInterval)
	assert.Equal(t, DefaultHelper, cfg.Editor.Helper)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
library_path: /srv/books
editor:
  command: ebook-edit --detach
watcher:
  timeout: 30s
  poll_interval: 250ms
log:
  level: debug
  format: json
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/books", cfg.LibraryPath)
	assert.Equal(t, "ebook-edit --detach", cfg.Editor.Command)
	assert.Equal(t, DefaultHelper, cfg.Editor.Helper)
	assert.Equal(t, 30*time.Second, cfg.Watcher.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Watcher.PollInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("library_path: /srv/books\nlog:\n  level: info\n"), 0644))

	t.Setenv(EnvLibrary, "/tmp/other")
	t.Setenv(EnvEditor, "sigil")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other", cfg.LibraryPath)
	assert.Equal(t, "sigil", cfg.Editor.Command)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("watcher: [1, 2"), 0644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "parse config")

	slow := filepath.Join(dir, "slow.yaml")
	require.NoError(t, os.WriteFile(slow, []byte("watcher:\n  timeout: 1s\n  poll_interval: 2s\n"), 0644))
	_, err = Load(slow)
	assert.ErrorContains(t, err, "exceeds")
}

func TestDefaultPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "libredit", "config.yaml"), DefaultPath())

	t.Setenv(EnvConfig, "/etc/libredit.yaml")
	assert.Equal(t, "/etc/libredit.yaml", DefaultPath())
}
