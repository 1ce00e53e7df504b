package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"setup-ubuntu/internal/config"
	"setup-ubuntu/internal/errors"
	"setup-ubuntu/internal/logger"
	"setup-ubuntu/internal/provision"
	"setup-ubuntu/internal/runner"
)

// Exit codes returned by Execute.
const (
	ExitSuccess     = 0 // every step and phase succeeded
	ExitFailure     = 1 // at least one step or phase failed
	ExitConfigError = 2 // configuration could not be loaded or is invalid
)

var (
	// debug enables cyan debug output. Set via --debug.
	debug bool
	// noColor disables ANSI colors, e.g. when output goes to a log file.
	noColor bool
	// configPath holds the path to the YAML configuration. Empty means setup.yaml
	// in the working directory, or the built-in defaults when that is absent.
	configPath string
)

// rootCmd is the base command for the CLI tool `setup-ubuntu`.
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Provision a fresh Ubuntu machine",
	Long: `Installs apt and cargo packages, deploys dotfiles into the home directory
and keeps the export declarations of ~/.zshrc and ~/.bashrc in sync with a
canonical list. Every step runs even when an earlier one fails.`,
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRun runs before any subcommand and sets up logging.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
		if noColor {
			logger.DisableColor()
		}
	},
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default setup.yaml, or built-in defaults)")
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if stderrors.As(err, &ee) {
		if ee.err != nil {
			logger.Error("[ERROR] %v\n", ee.err)
		}
		return ee.code
	}
	logger.Error("[ERROR] %v\n", err)
	return ExitFailure
}

// loadConfig reads the configuration, mapping any failure to ExitConfigError.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, &exitError{code: ExitConfigError, err: err}
	}
	logger.Debug("[DEBUG] Loaded config: %d steps, home %s, report %s\n", len(cfg.Steps), cfg.Home, cfg.ReportFile)
	return cfg, nil
}

// runPhases provisions the given phases (all when none), prints the summary and
// stores the report. A failed step or phase yields ExitFailure.
func runPhases(ctx context.Context, phases ...provision.Phase) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Banner("Starting %s\n", config.AppName)
	p := provision.New(cfg, afero.NewOsFs(), runner.NewExec())
	report := p.Run(ctx, phases...)
	provision.PrintSummary(report)

	if err := provision.Save(cfg.ReportFile, report); err != nil {
		logger.Warn("[WARN] Could not save run report to %s: %v\n", cfg.ReportFile, err)
	}

	if report.Failed() {
		return &exitError{code: ExitFailure, err: errors.New(errors.ErrSubprocessFailure, "provisioning finished with failures")}
	}
	return nil
}
