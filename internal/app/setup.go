package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/janseva/janseva/db"
	"github.com/janseva/janseva/internal/config"
	"github.com/janseva/janseva/internal/database"
	"github.com/janseva/janseva/internal/dialogue"
	"github.com/janseva/janseva/internal/extract"
	"github.com/janseva/janseva/internal/genai"
	"github.com/janseva/janseva/internal/issue"
	"github.com/janseva/janseva/internal/log"
	"github.com/janseva/janseva/internal/observability"
	"github.com/janseva/janseva/internal/retrieval"
	"github.com/janseva/janseva/internal/scheme"
	"github.com/janseva/janseva/internal/session"
)

// sessionReapInterval is how often expired sessions are purged.
const sessionReapInterval = 5 * time.Minute

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.otelCleanup = provideTracing(ctx, cfg, logger)

	pool, dbCleanup, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.dbCleanup = dbCleanup
	a.DBPool = pool

	g, embedder, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	a.Model = genai.NewClient(g, embedder, genai.Options{
		ModelName:   cfg.ModelName,
		Temperature: cfg.Temperature,
		VectorDim:   config.VectorDimension,
		CallTimeout: cfg.CallTimeout(),
		Retry: genai.RetryConfig{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
		},
		RateLimit: rate.Limit(5), // model calls per second, shared
		RateBurst: 10,
		Logger:    logger.With("component", "genai"),
	})

	a.Schemes = scheme.NewStore(scheme.NewPGQuerier(pool), a.Model,
		logger.With("component", "scheme"))

	a.Retriever = retrieval.New(a.Schemes, a.Model, a.Model, retrieval.Options{
		TopK:            cfg.RetrievalTopK,
		SimilarityFloor: cfg.SimilarityFloor,
		VectorWeight:    cfg.VectorWeight,
		KeywordWeight:   cfg.KeywordWeight,
		RerankEnabled:   cfg.RerankEnabled,
	}, logger.With("component", "retrieval"))

	a.Sessions = session.NewStore(session.NewPGQuerier(pool),
		logger.With("component", "session"))
	a.Issues = issue.NewStore(issue.NewPGQuerier(pool),
		logger.With("component", "issue"))
	a.Extractor = extract.New(a.Model, logger.With("component", "extract"))

	opts := dialogue.DefaultOptions()
	opts.SessionTTL = cfg.SessionTTL()
	opts.ContextWindow = cfg.ContextWindowTurns
	opts.HistoryTurns = cfg.HistoryTurns
	opts.ClarificationRounds = cfg.ClarificationRounds
	opts.SpokenSegmentRunes = cfg.SpokenSegmentRunes
	opts.ConfidenceThreshold = cfg.LanguageConfidenceThreshold

	a.Orchestrator = dialogue.New(a.Sessions, a.Retriever, a.Issues,
		a.Extractor, a.Model, opts, logger.With("component", "dialogue"))

	// Background reaper for expired sessions, stopped by Close.
	reapCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	go a.Sessions.RunReaper(reapCtx, sessionReapInterval)

	return a, nil
}

// provideTracing sets up OTLP trace export before Genkit initialization so
// the TracerProvider is ready when flows start. Returns the cleanup.
func provideTracing(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	}, logger)
	if err != nil {
		logger.Warn("tracing setup failed, continuing without", "error", err)
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideDBPool runs migrations and creates the PostgreSQL connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, func(), error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	return database.Connect(ctx, cfg.PostgresConnectionString())
}

// provideGenkit initializes Genkit with the Google AI plugin and looks up
// the configured embedder. Requires GEMINI_API_KEY in the environment.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, ai.Embedder, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, nil, errors.New("initializing genkit")
	}

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}

	logger.Info("initialized Genkit",
		"model", cfg.ModelName, "embedder", cfg.EmbedderModel)
	return g, embedder, nil
}
