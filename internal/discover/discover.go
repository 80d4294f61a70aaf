package discover

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/suykerbuyk/claude-idr/internal/transcript"
)

// SubagentsDir is the directory name Claude Code uses for nested agent sessions.
const SubagentsDir = "subagents"

// Candidate is a session log found on disk.
type Candidate struct {
	Path    string
	ModTime time.Time
}

// Excluder reports whether a candidate path must never be selected.
type Excluder func(path string) bool

// ExcludeSubagents rejects any path with a component equal to SubagentsDir.
func ExcludeSubagents(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == SubagentsDir {
			return true
		}
	}
	return false
}

// ProjectsDir returns ~/.claude/projects, or "" if the home directory is unknown.
func ProjectsDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".claude", "projects")
}

// Candidates walks root with an explicit stack and returns every *.jsonl file.
// Unreadable directories are logged and skipped; a missing root yields nil.
// Symlinked directories are not followed.
func Candidates(root string, logger *zap.Logger) []Candidate {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil
	}

	var out []Candidate
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn("cannot read directory", zap.String("dir", dir), zap.Error(err))
			continue
		}

		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() {
				stack = append(stack, path)
				continue
			}
			if filepath.Ext(e.Name()) != ".jsonl" {
				continue
			}
			fi, err := os.Stat(path)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			out = append(out, Candidate{Path: path, ModTime: fi.ModTime()})
		}
	}
	return out
}

// FindRecent returns the most recently modified eligible session log under root.
//
// A candidate is eligible when exclude does not reject it and its age at now
// is at most maxAge. A modification time in the future counts as age zero. Ties
// resolve to whichever candidate the walk met first.
func FindRecent(root string, maxAge time.Duration, exclude Excluder, now time.Time, logger *zap.Logger) (string, bool) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var best Candidate
	found := false
	for _, c := range Candidates(root, logger) {
		if exclude != nil && exclude(c.Path) {
			continue
		}
		if now.Sub(c.ModTime) > maxAge {
			continue
		}
		if !found || c.ModTime.After(best.ModTime) {
			best = c
			found = true
		}
	}

	if !found {
		return "", false
	}
	logger.Debug("selected session",
		zap.String("path", best.Path),
		zap.String("modified", humanize.RelTime(best.ModTime, now, "ago", "from now")),
	)
	return best.Path, true
}

// HasMutationActivity reports whether any record in the log used Write or Edit.
func HasMutationActivity(path string) bool {
	for rec := range transcript.Records(path) {
		if rec.HasMutation() {
			return true
		}
	}
	return false
}
