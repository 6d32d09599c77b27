package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/janseva/janseva/internal/api"
	"github.com/janseva/janseva/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP conversation engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := checkRequiredEnv(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	logger.Info("starting janseva", "version", Version)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	srv := api.NewServer(
		api.Config{
			Addr:       cfg.ServerAddr(),
			RatePerSec: cfg.RateLimit,
			RateBurst:  cfg.RateBurst,
		},
		api.NewConverseHandler(a.Orchestrator, logger.With("handler", "converse")),
		api.NewSchemeHandler(a.Retriever, logger.With("handler", "schemes")),
		api.NewIssueHandler(a.Issues, logger.With("handler", "issues")),
		api.NewWebhookHandler(a.Issues, logger.With("handler", "webhook")),
		api.NewHealthHandler(a.DBPool, logger.With("handler", "health")),
		logger,
	)

	return srv.Run(ctx)
}

// checkRequiredEnv verifies the model API key is present before any setup
// work. A missing key would otherwise surface as an opaque call failure.
func checkRequiredEnv() error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "Error: GEMINI_API_KEY environment variable not set")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "JanSeva requires a Gemini API key for generation and embeddings:")
		fmt.Fprintln(os.Stderr, "  export GEMINI_API_KEY=your-api-key")
		return fmt.Errorf("GEMINI_API_KEY not set")
	}
	return nil
}
