// Package cmd wires the renamarr command line: catalog sweeps, event
// replays, configuration management and journal inspection.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/renamarr/renamarr/internal/config"
)

var (
	configPath string
	dryRun     bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "renamarr",
	Short: "Reconcile media file names with catalog metadata",
	Long: `renamarr keeps a media library's folder and file names in sync with the
metadata catalog that describes it. It renders canonical names from
templates, normalizes season folder layouts, remaps misfiled episodes and
applies every change through collision-safe renames with a full audit
journal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.renamarr/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Report decisions without touching the filesystem")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dryRun {
		cfg.DryRun = true
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// newLogger builds the console logger used by every subcommand.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
