// Package cmd provides the CLI commands for Prashna.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shikshalabs/prashna/internal/config"
	prerrors "github.com/shikshalabs/prashna/internal/errors"
	"github.com/shikshalabs/prashna/internal/logging"
	"github.com/shikshalabs/prashna/pkg/version"
)

var (
	flagDataDir string
	flagDebug   bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the prashna CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prashna",
		Short: "Multilingual study assistant over your own documents",
		Long: `Prashna answers natural-language questions (English and Hindi)
against a local document collection using hybrid retrieval
(BM25 + semantic) with an Ollama-backed answering engine.

Everything runs locally; no query ever leaves your machine.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("prashna version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory (default ~/.prashna)")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	}

	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatCLIError(err))
		return err
	}
	return nil
}

// formatCLIError renders a command failure for the console, surfacing
// the error category and flagging unrecoverable failures.
func formatCLIError(err error) string {
	prefix := "Error"
	if prerrors.IsFatal(err) {
		prefix = "Fatal"
	}
	if cat := prerrors.GetCategory(err); cat != "" {
		return fmt.Sprintf("%s [%s]: %v", prefix, cat, err)
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}

// setupLogging routes structured logs to the rotating log file. The
// console stays clean for command output; the level comes from the
// config file or PRASHNA_LOG_LEVEL, with --debug overriding both.
func setupLogging(_ *cobra.Command, _ []string) error {
	// A broken config surfaces in the command itself; logging falls
	// back to defaults here.
	cfg, _ := loadConfig()
	logCfg := resolveLogConfig(cfg)

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		// Logging must never block the pipeline; fall back to stderr.
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		return nil
	}

	slog.SetDefault(logger)
	loggingCleanup = cleanup
	return nil
}

// resolveLogConfig applies the configured log level to the default
// file-logging setup. --debug wins over the config file and env.
func resolveLogConfig(cfg *config.Config) logging.Config {
	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	if cfg != nil && cfg.Logging.Level != "" {
		logCfg.Level = cfg.Logging.Level
	}
	if flagDebug {
		logCfg.Level = "debug"
	}
	return logCfg
}

// loadConfig resolves configuration, honoring the --data-dir override.
func loadConfig() (*config.Config, error) {
	dir := flagDataDir
	if dir == "" {
		dir = "."
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.Store.DataDir = flagDataDir
	}
	return cfg, nil
}
