package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLibraryPath  = "~/Books/libredit"
	DefaultHelper       = "libredit-cli"
	DefaultTimeout      = 120 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Environment overrides
const (
	EnvLibrary  = "LIBREDIT_LIBRARY"
	EnvEditor   = "LIBREDIT_EDITOR"
	EnvLogLevel = "LIBREDIT_LOG_LEVEL"
	EnvConfig   = "LIBREDIT_CONFIG"
)

type EditorConfig struct {
	Command string `yaml:"command"` // editor argv, e.g. "ebook-edit"
	Helper  string `yaml:"helper"`  // handshake helper binary
}

type WatcherConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // json|console
	File   string `yaml:"file"`   // used by the TUI, which owns the terminal
}

type Config struct {
	LibraryPath string        `yaml:"library_path"`
	Editor      EditorConfig  `yaml:"editor"`
	Watcher     WatcherConfig `yaml:"watcher"`
	Log         LogConfig     `yaml:"log"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPath returns $XDG_CONFIG_HOME/libredit/config.yaml, or the
// LIBREDIT_CONFIG override
func DefaultPath() string {
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "libredit", "config.yaml")
}

// Load reads the YAML config at path, then applies environment overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.Watcher.PollInterval > cfg.Watcher.Timeout {
		return nil, fmt.Errorf("watcher.poll_interval (%s) exceeds watcher.timeout (%s)",
			cfg.Watcher.PollInterval, cfg.Watcher.Timeout)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if env := os.Getenv(EnvLibrary); env != "" {
		c.LibraryPath = env
	}
	if env := os.Getenv(EnvEditor); env != "" {
		c.Editor.Command = env
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		c.Log.Level = env
	}
}

func (c *Config) applyDefaults() {
	if c.LibraryPath == "" {
		c.LibraryPath = DefaultLibraryPath
	}
	if c.Editor.Helper == "" {
		c.Editor.Helper = DefaultHelper
	}
	if c.Watcher.Timeout <= 0 {
		c.Watcher.Timeout = DefaultTimeout
	}
	if c.Watcher.PollInterval <= 0 {
		c.Watcher.PollInterval = DefaultPollInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}
