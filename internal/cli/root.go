// Package cli implements the slurpy command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/slurpy/internal/audit"
	"github.com/marcelocantos/slurpy/internal/config"
	"github.com/marcelocantos/slurpy/internal/factory"
	"github.com/marcelocantos/slurpy/internal/job"
	"github.com/marcelocantos/slurpy/internal/logging"
	"github.com/marcelocantos/slurpy/internal/pdftk"
)

// App holds the state shared by slurpy's subcommands.
type App struct {
	Version string
	// Runner overrides how commands are run; nil uses /bin/sh.
	Runner pdftk.Runner

	configPath string
	binary     string
	logLevel   string

	cfg  *config.Config
	exec *job.Executor
}

// Main runs slurpy with args and returns the process exit code.
func Main(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	app := &App{Version: version}
	cmd := app.Command()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "slurpy: %v\n", err)
		return 1
	}
	return 0
}

// Command returns the root command.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "slurpy",
		Short: "Build and run pdftk commands from job files",
		Long: `slurpy turns declarative jobs (YAML or Starlark) into pdftk command lines
and runs them, recording every invocation in a hash-chained audit log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvPath+" or ~/.config/slurpy/config.yaml)")
	pf.StringVar(&a.binary, "binary", "", "pdftk binary, overriding the config")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error, overriding the config")

	root.AddCommand(
		a.runCommand(),
		a.printCommand(),
		a.listCommand(),
		a.auditCommand(),
		a.serveCommand(),
		a.versionCommand(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	if err := logging.Setup(cmd.ErrOrStderr(), level, cfg.Log.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	binary := cfg.Binary
	if a.binary != "" {
		binary = a.binary
	}
	defaults, err := cfg.ToolkitOptions()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.exec = &job.Executor{
		Factory:   factory.New(binary),
		Defaults:  defaults,
		Overwrite: cfg.Overwrite,
		Runner:    a.Runner,
	}
	logging.Logger().Debug("config loaded", slog.String("path", path), slog.String("binary", binary))
	return nil
}

// openAudit attaches the audit log to the executor when enabled. Failing to
// open it is logged and otherwise ignored.
func (a *App) openAudit() {
	if !a.cfg.Audit.Enabled || a.exec.Audit != nil {
		return
	}
	logger, err := audit.NewLogger(a.cfg.Audit.Path)
	if err != nil {
		logging.Logger().Warn("audit log disabled", slog.String("path", a.cfg.Audit.Path), slog.Any("err", err))
		return
	}
	a.exec.Audit = logger
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the slurpy version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "slurpy %s\n", a.Version)
		},
	}
}
