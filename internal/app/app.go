// Package app provides application initialization and dependency wiring.
//
// App is the container that holds every long-lived component of the
// conversation engine: the Genkit runtime, the model client, the PostgreSQL
// pool and the stores and orchestrator built on top of them. Setup builds
// it in dependency order; Close tears it down in reverse.
package app

import (
	"context"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/janseva/janseva/internal/config"
	"github.com/janseva/janseva/internal/dialogue"
	"github.com/janseva/janseva/internal/extract"
	"github.com/janseva/janseva/internal/genai"
	"github.com/janseva/janseva/internal/issue"
	"github.com/janseva/janseva/internal/log"
	"github.com/janseva/janseva/internal/retrieval"
	"github.com/janseva/janseva/internal/scheme"
	"github.com/janseva/janseva/internal/session"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	Genkit *genkit.Genkit
	Model  *genai.Client
	DBPool *pgxpool.Pool

	// Domain components
	Schemes      *scheme.Store
	Retriever    *retrieval.Retriever
	Sessions     *session.Store
	Issues       *issue.Store
	Extractor    *extract.Extractor
	Orchestrator *dialogue.Orchestrator

	// Teardown, reverse order of construction.
	otelCleanup func()
	dbCleanup   func()
	cancel      context.CancelFunc
}

// Close releases all resources. Safe to call on a partially built App.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")

	if a.cancel != nil {
		a.cancel()
	}
	if a.dbCleanup != nil {
		a.dbCleanup()
		a.Logger.Info("database pool closed")
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}
