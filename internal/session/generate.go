// Package session turns the recent Claude Code session and the staged diff
// into an IDR file.
package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/suykerbuyk/claude-idr/internal/archive"
	"github.com/suykerbuyk/claude-idr/internal/claude"
	"github.com/suykerbuyk/claude-idr/internal/config"
	"github.com/suykerbuyk/claude-idr/internal/digest"
	"github.com/suykerbuyk/claude-idr/internal/discover"
	"github.com/suykerbuyk/claude-idr/internal/gitdiff"
	"github.com/suykerbuyk/claude-idr/internal/output"
	"github.com/suykerbuyk/claude-idr/internal/prompt"
	"github.com/suykerbuyk/claude-idr/internal/render"
	"github.com/suykerbuyk/claude-idr/internal/sanitize"
)

// Redactor scrubs secrets from text before it leaves the machine.
type Redactor interface {
	Redact(content string) (string, int)
}

// Generator holds the collaborators for one run.
type Generator struct {
	Config   config.Config
	Git      gitdiff.Source
	Claude   claude.Runner
	Redactor Redactor // nil disables redaction
	Logger   *zap.Logger
}

// Options vary per invocation.
type Options struct {
	DryRun      bool
	SessionPath string // skips discovery when set
	ProjectsDir string
	Branch      string
	Now         time.Time
}

// Result describes what a run did. Skipped runs carry a Reason and no Path.
type Result struct {
	Path    string
	Purpose string
	Session string
	Skipped bool
	Reason  string
	DryRun  bool
	Prompt  string
}

func skip(format string, args ...any) *Result {
	return &Result{Skipped: true, Reason: fmt.Sprintf(format, args...)}
}

// Generate runs the pipeline. Every "cannot proceed" condition is reported
// as a skipped Result rather than an error so a pre-commit hook never blocks
// a commit.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Result, error) {
	logger := g.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if g.Git == nil || g.Claude == nil {
		return nil, fmt.Errorf("generator missing git or claude collaborator")
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	cfg := g.Config

	if !cfg.Enabled {
		return skip("disabled by config"), nil
	}

	sessionPath := opts.SessionPath
	if sessionPath == "" {
		p, ok := discover.FindRecent(opts.ProjectsDir, cfg.SessionMaxAge(), discover.ExcludeSubagents, now, logger)
		if !ok {
			return skip("no recent session found"), nil
		}
		sessionPath = p
	}
	if !discover.HasMutationActivity(sessionPath) {
		return skip("session found but no code changes via Claude detected: %s", sessionPath), nil
	}

	diff, err := g.Git.StagedDiff(ctx)
	if err != nil {
		logger.Debug("git diff failed", zap.Error(err))
		return skip("git failed"), nil
	}
	if strings.TrimSpace(diff) == "" {
		return skip("no staged changes"), nil
	}
	stat := g.Git.StagedStat(ctx)

	if cfg.MaxDiffLines > 0 {
		if n := g.Git.StagedChangedLines(ctx); n > cfg.MaxDiffLines {
			return skip("diff too large (%d lines > %d limit), skipping. Split your commit for IDR generation.", n, cfg.MaxDiffLines), nil
		}
	}

	diff = g.redact(diff, "diff", logger)
	stat = g.redact(stat, "stat", logger)
	idrPrompt := prompt.BuildIDR(diff, stat, cfg.Language)

	if opts.DryRun {
		return &Result{Session: sessionPath, DryRun: true, Prompt: idrPrompt}, nil
	}

	purpose := g.purpose(ctx, sessionPath, logger)

	logger.Info("generating IDR", zap.String("session", sessionPath))
	content, err := g.Claude.Run(ctx, idrPrompt, cfg.Model)
	if err != nil || strings.TrimSpace(content) == "" {
		logger.Warn("claude CLI failed", zap.String("stage", "idr"), zap.Error(err))
		content = render.FallbackContent
	}

	dir := output.Resolve(cfg.WorkspaceDir, cfg.OutputDir, now, logger)
	name := output.FileName(output.NextNumber(dir))
	path := filepath.Join(dir, name)

	doc := render.Doc{
		Purpose: purpose,
		Branch:  opts.Branch,
		Created: now,
		Content: strings.TrimSpace(content),
		Stat:    stat,
	}
	if err := render.Write(path, doc); err != nil {
		logger.Warn("failed to write IDR", zap.String("path", path), zap.Error(err))
		return skip("failed to write IDR: %v", err), nil
	}

	if cfg.Archive.Enabled {
		snap, err := archive.Snapshot(sessionPath, filepath.Join(dir, archive.Dir), strings.TrimSuffix(name, ".md"), cfg.Archive.Compress)
		if err != nil {
			logger.Warn("cannot archive session", zap.String("session", sessionPath), zap.Error(err))
		} else {
			logger.Debug("archived session", zap.String("path", snap))
		}
	}

	return &Result{Path: path, Purpose: doc.Purpose, Session: sessionPath}, nil
}

// purpose asks claude for a one-line summary of the session, or returns
// render.FallbackPurpose.
func (g *Generator) purpose(ctx context.Context, sessionPath string, logger *zap.Logger) string {
	d, ok := digest.Extract(sessionPath)
	if !ok {
		return render.FallbackPurpose
	}
	text := g.redact(sanitize.StripTags(d.Render()), "context", logger)

	out, err := g.Claude.Run(ctx, prompt.BuildPurpose(text, g.Config.Language), g.Config.Model)
	if err != nil {
		logger.Warn("claude CLI failed", zap.String("stage", "purpose"), zap.Error(err))
		return render.FallbackPurpose
	}
	if line := firstLine(out); line != "" {
		return line
	}
	return render.FallbackPurpose
}

func (g *Generator) redact(text, what string, logger *zap.Logger) string {
	if g.Redactor == nil || !g.Config.Redact.Enabled {
		return text
	}
	out, n := g.Redactor.Redact(text)
	if n > 0 {
		logger.Info("redacted secrets", zap.String("from", what), zap.Int("count", n))
	}
	return out
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
