package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// AppName is used for the config directory and log prefixes.
const AppName = "claude-idr"

// Config holds all claude-idr configuration.
type Config struct {
	Enabled          bool   `toml:"enabled"`
	Language         string `toml:"language"`
	Model            string `toml:"model"`
	WorkspaceDir     string `toml:"workspace_dir"`
	OutputDir        string `toml:"output_dir"`
	SessionMaxAgeMin int    `toml:"session_max_age_min"`
	MaxDiffLines     int    `toml:"max_diff_lines"`
	ClaudeTimeoutSec int    `toml:"claude_timeout_seconds"`

	Redact  RedactConfig  `toml:"redact"`
	Archive ArchiveConfig `toml:"archive"`
	Log     LogConfig     `toml:"log"`
}

type RedactConfig struct {
	Enabled bool `toml:"enabled"`
}

// ArchiveConfig controls the session snapshot stored next to each IDR.
type ArchiveConfig struct {
	Enabled  bool `toml:"enabled"`
	Compress bool `toml:"compress"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		Language:         "ja",
		Model:            "sonnet",
		WorkspaceDir:     "~/.claude/workspace",
		SessionMaxAgeMin: 30,
		MaxDiffLines:     2000,
		ClaudeTimeoutSec: 300,
		Redact:           RedactConfig{Enabled: true},
		Archive:          ArchiveConfig{Enabled: false, Compress: true},
		Log:              LogConfig{Level: "info"},
	}
}

// Load reads config from path, or from the first standard path that exists
// when path is empty. A missing file at a standard path yields defaults.
// On a parse error the defaults are returned together with the error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		for _, p := range configPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path != "" {
		fileCfg := DefaultConfig()
		if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return cfg.expanded(), fmt.Errorf("read config %s: %w", path, err)
			}
			return cfg.expanded(), fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = fileCfg
	}

	return cfg.expanded(), nil
}

func (c Config) expanded() Config {
	c.WorkspaceDir = expandHome(c.WorkspaceDir)
	c.OutputDir = expandHome(c.OutputDir)
	c.Log.File = expandHome(c.Log.File)
	return c
}

// Path returns the config file Load would read, whether or not it exists.
func Path() string {
	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, AppName, "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", AppName, "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// SessionMaxAge returns how old a session log may be and still be used.
// Negative values are treated as zero.
func (c Config) SessionMaxAge() time.Duration {
	if c.SessionMaxAgeMin < 0 {
		return 0
	}
	return time.Duration(c.SessionMaxAgeMin) * time.Minute
}

// ClaudeTimeout returns the per-invocation claude timeout, or 0 for the
// runner's default.
func (c Config) ClaudeTimeout() time.Duration {
	if c.ClaudeTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.ClaudeTimeoutSec) * time.Second
}
