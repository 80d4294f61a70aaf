// Package claude runs prompts through the claude CLI in print mode.
package claude

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single claude invocation.
const DefaultTimeout = 5 * time.Minute

// Runner sends a prompt to a model and returns its reply.
type Runner interface {
	Run(ctx context.Context, prompt, model string) (string, error)
}

// CLI invokes the claude binary. Zero values use "claude" and DefaultTimeout.
type CLI struct {
	Binary  string
	Timeout time.Duration
}

// Args returns the arguments passed to the binary for model.
func Args(model string) []string {
	return []string{"-p", "--model", model}
}

// Run writes prompt to the CLI's stdin and returns its stdout.
// A non-zero exit returns an error carrying stderr.
func (c CLI) Run(ctx context.Context, prompt, model string) (string, error) {
	bin := c.Binary
	if bin == "" {
		bin = "claude"
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, Args(model)...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("claude timed out after %s: %w", timeout, ctx.Err())
		}
		return "", fmt.Errorf("claude: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
