package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/suykerbuyk/claude-idr/internal/check"
	"github.com/suykerbuyk/claude-idr/internal/config"
	"github.com/suykerbuyk/claude-idr/internal/digest"
	"github.com/suykerbuyk/claude-idr/internal/discover"
	"github.com/suykerbuyk/claude-idr/internal/gitdiff"
	"github.com/suykerbuyk/claude-idr/internal/help"
	"github.com/suykerbuyk/claude-idr/internal/hook"
	"github.com/suykerbuyk/claude-idr/internal/output"
)

func newContextCmd(a *app) *cobra.Command {
	var sessionPath string
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Print the changed files and user requests of the recent session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := sessionPath
			if path == "" {
				p, ok := discover.FindRecent(a.projectsDir, a.cfg.SessionMaxAge(), discover.ExcludeSubagents, a.now(), a.logger)
				if !ok {
					status(cmd.ErrOrStderr(), "no recent session found")
					return nil
				}
				path = p
			}
			d, ok := digest.Extract(path)
			if !ok {
				status(cmd.ErrOrStderr(), "no context in %s", path)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), d.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionPath, "session", "", "session log to read")
	return cmd
}

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Print the output directory and next IDR file name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := output.Resolve(a.cfg.WorkspaceDir, a.cfg.OutputDir, a.now(), a.logger)
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, output.FileName(output.NextNumber(dir))))
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	var workspace string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, action, err := config.WriteDefault(workspace)
			if err != nil {
				return err
			}
			status(cmd.ErrOrStderr(), "config %s: %s", action, config.CompressHome(path))
			return nil
		},
	}
	cmd.Flags().StringVar(&workspace, "workspace", "", "workspace_dir to record")
	return cmd
}

func newHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage the git pre-commit hook in the current repository",
	}

	hooksDir := func() (string, error) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		repo, err := gitdiff.Open(cwd)
		if err != nil {
			return "", err
		}
		return repo.HooksDir()
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "install",
			Short: "Run claude-idr from the pre-commit hook",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := hooksDir()
				if err != nil {
					return err
				}
				return hook.Install(dir, cmd.ErrOrStderr())
			},
		},
		&cobra.Command{
			Use:   "uninstall",
			Short: "Remove claude-idr from the pre-commit hook",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := hooksDir()
				if err != nil {
					return err
				}
				return hook.Uninstall(dir, cmd.ErrOrStderr())
			},
		},
	)
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report on configuration, tools, sessions and hook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath := a.configPath
			if cfgPath == "" {
				cfgPath = config.Path()
			}
			cwd, _ := os.Getwd()
			report := check.Run(a.cfg, check.Env{
				ConfigPath:  cfgPath,
				ProjectsDir: a.projectsDir,
				RepoDir:     cwd,
				Now:         a.now(),
			})
			fmt.Fprint(cmd.OutOrStdout(), report.Format())
			if report.HasFailures() {
				return fmt.Errorf("check failed")
			}
			return nil
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "man [dir]",
		Short:  "Write man pages",
		Hidden: true,
		Args:   cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "man"
			if len(args) > 0 {
				dir = args[0]
			}
			paths, err := help.WriteAll(cmd.Root(), dir, version, "")
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
			return err
		},
	}
}
