// Command claude-idr writes an Implementation Decision Record for the staged
// changes, using the recent Claude Code session for intent.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suykerbuyk/claude-idr/internal/claude"
	"github.com/suykerbuyk/claude-idr/internal/config"
	"github.com/suykerbuyk/claude-idr/internal/discover"
	"github.com/suykerbuyk/claude-idr/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "claude-idr: %v\n", err)
		os.Exit(1)
	}
}

// app carries state shared by subcommands. Zero-valued fields are filled
// with real implementations; tests replace them.
type app struct {
	configPath  string
	verbose     bool
	projectsDir string
	now         func() time.Time
	runner      claude.Runner

	cfg    config.Config
	logger *zap.Logger
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	a.cfg = cfg

	logCfg := logging.Config{Level: cfg.Log.Level, File: cfg.Log.File}
	if a.verbose {
		logCfg.Level = "debug"
	}
	logger, logErr := logging.New(logCfg, cmd.ErrOrStderr())
	a.logger = logger

	if err != nil {
		logger.Warn("using default config", zap.Error(err))
	}
	if logErr != nil {
		logger.Warn("logging", zap.Error(logErr))
	}

	if a.projectsDir == "" {
		a.projectsDir = discover.ProjectsDir()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.runner == nil {
		a.runner = claude.CLI{Timeout: cfg.ClaudeTimeout()}
	}
	return nil
}

func status(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "claude-idr: "+format+"\n", args...)
}

func newRootCmd(a *app) *cobra.Command {
	var opts generateFlags

	root := &cobra.Command{
		Use:   "claude-idr",
		Short: "Generate Implementation Decision Records from staged diffs using Claude",
		Long: `claude-idr reads the staged git diff and the most recent Claude Code
session, asks claude for an Implementation Decision Record, and writes it
as idr-NN.md into the active planning directory.

Run it from a git pre-commit hook (claude-idr hook install) or by hand.
Every "nothing to do" condition exits 0 so commits are never blocked.

Configuration: ~/.config/claude-idr/config.toml (claude-idr init)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, a, opts)
		},
	}
	root.SetVersionTemplate("claude-idr {{.Version}}\n")

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show the IDR prompt without calling claude")
	root.Flags().StringVar(&opts.session, "session", "", "use this session log instead of the most recent one")

	root.AddCommand(
		newContextCmd(a),
		newResolveCmd(a),
		newInitCmd(),
		newHookCmd(),
		newCheckCmd(a),
		newManCmd(),
	)
	return root
}
