// Package gitdiff reads staged changes from the repository being committed.
//
// The diff text comes from the git CLI so it matches what the user sees;
// repository metadata (root, branch, hooks directory) comes from go-git.
package gitdiff

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds each git invocation.
const DefaultTimeout = 10 * time.Second

// Source is what generation needs from git.
type Source interface {
	StagedDiff(ctx context.Context) (string, error)
	StagedStat(ctx context.Context) string
	StagedChangedLines(ctx context.Context) int
}

// CLI runs git in Dir. A zero Timeout uses DefaultTimeout.
type CLI struct {
	Dir     string
	Timeout time.Duration
	Binary  string // defaults to "git"
}

func (c CLI) run(ctx context.Context, args ...string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	bin := c.Binary
	if bin == "" {
		bin = "git"
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = c.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// StagedDiff returns `git diff --cached`.
func (c CLI) StagedDiff(ctx context.Context) (string, error) {
	return c.run(ctx, "diff", "--cached")
}

// StagedStat returns `git diff --cached --stat`, or "" on failure.
func (c CLI) StagedStat(ctx context.Context) string {
	out, err := c.run(ctx, "diff", "--cached", "--stat")
	if err != nil {
		return ""
	}
	return strings.TrimRight(out, "\n")
}

// StagedChangedLines sums added and removed lines across staged files.
// Binary files count as zero. Failure counts as zero.
func (c CLI) StagedChangedLines(ctx context.Context) int {
	out, err := c.run(ctx, "diff", "--cached", "--numstat")
	if err != nil {
		return 0
	}
	return parseNumstat(out)
}

func parseNumstat(out string) int {
	total := 0
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		for _, f := range fields[:2] {
			if n, err := strconv.Atoi(f); err == nil {
				total += n
			}
		}
	}
	return total
}
