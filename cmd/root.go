// Package cmd wires the janseva command-line interface.
//
// Subcommands:
//
//	serve    start the HTTP conversation engine
//	index    load scheme documents into the knowledge base
//	migrate  apply pending database migrations
//	version  print build information
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/janseva/janseva/internal/config"
	"github.com/janseva/janseva/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "janseva",
	Short: "JanSeva - bilingual citizen assistance engine",
	Long: `JanSeva answers citizen questions about government welfare schemes and
files civic issue reports, in Hindi and English. It serves a voice-first
conversation API backed by hybrid retrieval over verified scheme documents.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the process logger. DEBUG in the environment lowers the
// level; JSON output is used outside a terminal-friendly dev environment.
func newLogger(cfg *config.Config) log.Logger {
	lcfg := log.Config{Level: slog.LevelInfo, JSON: cfg.Environment != "dev"}
	if os.Getenv("DEBUG") != "" {
		lcfg.Level = slog.LevelDebug
	}
	logger := log.New(lcfg)
	slog.SetDefault(logger)
	return logger
}

// loadConfig loads and validates configuration for commands that need the
// full engine.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
