package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/claude-idr/internal/gitdiff"
	"github.com/suykerbuyk/claude-idr/internal/sanitize"
	"github.com/suykerbuyk/claude-idr/internal/session"
)

type generateFlags struct {
	dryRun  bool
	session string
}

func runGenerate(cmd *cobra.Command, a *app, flags generateFlags) error {
	stderr := cmd.ErrOrStderr()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	repoDir, branch := cwd, ""
	if repo, err := gitdiff.Open(cwd); err == nil {
		repoDir = repo.Root()
		branch = repo.Branch()
	}

	gen := &session.Generator{
		Config: a.cfg,
		Git:    gitdiff.CLI{Dir: repoDir},
		Claude: a.runner,
		Logger: a.logger,
	}
	if a.cfg.Redact.Enabled {
		if r, err := sanitize.NewRedactor(); err != nil {
			a.logger.Warn("secret redaction unavailable", zap.Error(err))
		} else {
			gen.Redactor = r
		}
	}

	res, err := gen.Generate(cmd.Context(), session.Options{
		DryRun:      flags.dryRun,
		SessionPath: flags.session,
		ProjectsDir: a.projectsDir,
		Branch:      branch,
		Now:         a.now(),
	})
	if err != nil {
		return err
	}

	switch {
	case res.Skipped:
		status(stderr, "%s", res.Reason)
	case res.DryRun:
		status(stderr, "dry-run mode")
		fmt.Fprintf(stderr, "--- IDR prompt (%d chars) ---\n", len(res.Prompt))
		fmt.Fprintln(stderr, res.Prompt)
	default:
		status(stderr, "IDR generated: %s", res.Path)
	}
	return nil
}
