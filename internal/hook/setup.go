package hook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/suykerbuyk/claude-idr/internal/config"
)

// Marker tags the line this package owns in a pre-commit script.
const Marker = "# claude-idr hook"

// hookLine runs generation without ever failing the commit.
const hookLine = "command -v claude-idr >/dev/null 2>&1 && claude-idr || true  " + Marker

const shebang = "#!/bin/sh"

var shells = map[string]bool{
	"sh": true, "bash": true, "dash": true, "zsh": true,
	"ksh": true, "mksh": true, "ash": true, "busybox": true,
}

// interpreter returns the program named by the script's shebang, looking
// through env. Empty when there is no shebang.
func interpreter(content string) string {
	first, _, _ := strings.Cut(content, "\n")
	if !strings.HasPrefix(first, "#!") {
		return ""
	}
	fields := strings.Fields(strings.TrimPrefix(first, "#!"))
	if len(fields) == 0 {
		return ""
	}
	prog := filepath.Base(fields[0])
	if prog != "env" {
		return prog
	}
	for _, f := range fields[1:] {
		if !strings.HasPrefix(f, "-") && !strings.Contains(f, "=") {
			return filepath.Base(f)
		}
	}
	return prog
}

// lastCommand returns the first word of the last non-blank, non-comment line.
func lastCommand(content string) string {
	lines := strings.Split(content, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

// PreCommitPath returns the pre-commit script path inside hooksDir.
func PreCommitPath(hooksDir string) string {
	return filepath.Join(hooksDir, "pre-commit")
}

// IsInstalled reports whether the pre-commit script carries the marked line.
func IsInstalled(hooksDir string) bool {
	data, err := os.ReadFile(PreCommitPath(hooksDir))
	if err != nil {
		return false
	}
	return hasMarker(string(data))
}

// Install appends the claude-idr line to hooksDir/pre-commit, creating the
// script if needed. Idempotent: returns nil when already installed.
func Install(hooksDir string, w io.Writer) error {
	path := PreCommitPath(hooksDir)

	content, err := readScript(path)
	if err != nil {
		return err
	}

	if hasMarker(content) {
		fmt.Fprintf(w, "claude-idr hook already configured in %s\n", config.CompressHome(path))
		return nil
	}

	if interp := interpreter(content); interp != "" && !shells[interp] {
		return fmt.Errorf("%s runs under %s, not a shell; add %q by hand", config.CompressHome(path), interp, hookLine)
	}

	if err := backup(path); err != nil {
		return err
	}

	if last := lastCommand(content); last == "exit" || last == "exec" {
		fmt.Fprintf(w, "warning: %s ends with %s; the claude-idr line after it will not run\n", config.CompressHome(path), last)
	}

	if strings.TrimSpace(content) == "" {
		content = shebang + "\n"
	} else if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += hookLine + "\n"

	if err := writeScript(path, content); err != nil {
		return err
	}

	fmt.Fprintf(w, "claude-idr hook installed in %s\n", config.CompressHome(path))
	return nil
}

// Uninstall removes the marked line. The script is deleted when nothing but
// a shebang remains. Idempotent: returns nil when not installed.
func Uninstall(hooksDir string, w io.Writer) error {
	path := PreCommitPath(hooksDir)

	content, err := readScript(path)
	if err != nil {
		return err
	}

	if !hasMarker(content) {
		fmt.Fprintf(w, "claude-idr hook not found in %s\n", config.CompressHome(path))
		return nil
	}

	if err := backup(path); err != nil {
		return err
	}

	var kept []string
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if !strings.Contains(line, Marker) {
			kept = append(kept, line)
		}
	}

	if onlyShebang(kept) {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", config.CompressHome(path), err)
		}
	} else if err := writeScript(path, strings.Join(kept, "\n")+"\n"); err != nil {
		return err
	}

	fmt.Fprintf(w, "claude-idr hook removed from %s\n", config.CompressHome(path))
	return nil
}

func hasMarker(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, Marker) {
			return true
		}
	}
	return false
}

func onlyShebang(lines []string) bool {
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" && !strings.HasPrefix(l, "#!") {
			return false
		}
	}
	return true
}

// readScript returns "" if the script doesn't exist.
func readScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", config.CompressHome(path), err)
	}
	return string(data), nil
}

// writeScript writes content and marks it executable.
func writeScript(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", config.CompressHome(path), err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("chmod %s: %w", config.CompressHome(path), err)
	}
	return nil
}

// backup copies the script to path.claude-idr.bak. No-op if source doesn't exist.
func backup(path string) error {
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("backup: open %s: %w", config.CompressHome(path), err)
	}
	defer src.Close()

	dst, err := os.Create(path + ".claude-idr.bak")
	if err != nil {
		return fmt.Errorf("backup: create %s.claude-idr.bak: %w", config.CompressHome(path), err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("backup: copy: %w", err)
	}
	return nil
}
