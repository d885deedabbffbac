package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/HR-AR/Project-Conductor-sub004/internal/config"
)

// Global flag values shared by all subcommands.
var (
	configFile   string
	outputFormat string
	verbose      bool
)

// cfg is loaded once in the persistent pre-run and read by subcommands.
var cfg *config.Config

// logger is configured from the loaded config.
var logger *slog.Logger

var rootCmd = &cobra.Command{
	Use:   "conductor",
	Short: "Conductor - execution planning and adaptive recovery engine",
	Long: `Conductor turns natural-language goals into validated execution
plans: it parses goal intent and capabilities, generates a task plan
with dependencies, milestones and risk assessment, optimizes it under
a strategy, and computes bounded parallel execution order.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// setup loads configuration and builds the logger before any command
// runs. A missing config file falls back to defaults.
func setup(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = os.Getenv("CONDUCTOR_CONFIG")
	}
	if path == "" {
		path = "conductor.yaml"
	}

	loaded, err := config.NewLoader(config.NewValidator()).LoadWithDefaults(path)
	if err != nil {
		return err
	}
	cfg = loaded
	logger = newLogger(cfg.Logging)
	slog.SetDefault(logger)
	return nil
}

// newLogger builds a slog logger from the logging config. Verbose
// overrides the configured level.
func newLogger(lc config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if lc.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default conductor.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format: yaml or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the conductor version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("conductor version 0.1.0")
	},
}
