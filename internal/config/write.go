package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var workspaceLine = regexp.MustCompile(`(?m)^workspace_dir\s*=.*$`)

// ConfigDir returns the claude-idr config directory path.
// Uses $XDG_CONFIG_HOME/claude-idr if set, otherwise ~/.config/claude-idr.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppName)
}

const defaultTemplate = `# claude-idr configuration

enabled = true

# Language of generated IDRs: "ja", "en", or any language name.
language = "ja"
model = "sonnet"

# .current-sow is read from here; planning/YYYY-MM-DD is the fallback.
workspace_dir = %q

# When set, every IDR is written here instead.
output_dir = ""

session_max_age_min = 30
max_diff_lines = 2000
claude_timeout_seconds = 300

[redact]
enabled = true

[archive]
enabled = false
compress = true

[log]
level = "info"
file = ""
`

// WriteDefault writes a default config.toml with workspace as workspace_dir.
// If the file exists and workspace is non-empty, only its workspace_dir line
// is rewritten. Returns the config file path and the action taken:
// "created", "updated", or "unchanged".
func WriteDefault(workspace string) (string, string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if data, err := os.ReadFile(path); err == nil {
		if workspace == "" {
			return path, "unchanged", nil
		}
		return updateWorkspace(path, string(data), workspace)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create config dir: %w", err)
	}

	if workspace == "" {
		workspace = DefaultConfig().WorkspaceDir
	}
	content := fmt.Sprintf(defaultTemplate, CompressHome(workspace))

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("write config: %w", err)
	}

	return path, "created", nil
}

func updateWorkspace(path, content, workspace string) (string, string, error) {
	line := fmt.Sprintf("workspace_dir = %q", CompressHome(workspace))

	var updated string
	if loc := workspaceLine.FindStringIndex(content); loc != nil {
		if content[loc[0]:loc[1]] == line {
			return path, "unchanged", nil
		}
		updated = content[:loc[0]] + line + content[loc[1]:]
	} else {
		updated = line + "\n\n" + content
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return "", "", fmt.Errorf("write config: %w", err)
	}
	return path, "updated", nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
