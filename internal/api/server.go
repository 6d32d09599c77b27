// Package api exposes the conversation engine over HTTP.
//
// Endpoints:
//
//	POST /api/v1/converse                      one conversation turn
//	GET  /api/v1/schemes/{id}                  current scheme document
//	POST /api/v1/schemes/{id}/eligibility      advisory eligibility check
//	GET  /api/v1/issues/{trackingID}           issue report with history
//	POST /api/v1/issues/{trackingID}/comments  citizen follow-up
//	POST /api/v1/case-updates                  municipal status webhook
//	GET  /healthz                              liveness probe
//	GET  /readyz                               readiness probe
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// ShutdownTimeout is the maximum wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against slow-header clients.
	ReadHeaderTimeout = 10 * time.Second
	ReadTimeout       = 30 * time.Second
	WriteTimeout      = 60 * time.Second
	IdleTimeout       = 120 * time.Second
)

// Config holds the server's tunables.
type Config struct {
	Addr       string
	RatePerSec float64
	RateBurst  int
	TrustProxy bool
}

// Server is the engine's HTTP front.
type Server struct {
	mux     *http.ServeMux
	cfg     Config
	limiter *rateLimiter
	logger  *slog.Logger
}

// NewServer creates a server with all routes registered.
func NewServer(cfg Config, conv *ConverseHandler, schemes *SchemeHandler, issues *IssueHandler, webhook *WebhookHandler, health *HealthHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}

	mux := http.NewServeMux()
	conv.RegisterRoutes(mux)
	schemes.RegisterRoutes(mux)
	issues.RegisterRoutes(mux)
	webhook.RegisterRoutes(mux)
	health.RegisterRoutes(mux)

	return &Server{
		mux:     mux,
		cfg:     cfg,
		limiter: newRateLimiter(cfg.RatePerSec, cfg.RateBurst),
		logger:  logger,
	}
}

// Handler returns the mux with middleware applied.
// Order: recovery, request id, logging, rate limit, routes.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
		rateLimitMiddleware(s.limiter, s.cfg.TrustProxy, s.logger),
	)
}

// Run starts the server and blocks until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewHealthHandler creates a health handler. pool backs the readiness check.
func NewHealthHandler(pool *pgxpool.Pool, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{pool: pool, logger: logger}
}

// RegisterRoutes registers the probe routes.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.liveness)
	mux.HandleFunc("GET /readyz", h.readiness)
}

func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		http.Error(w, "database pool not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.pool.Ping(r.Context()); err != nil {
		h.logger.Error("readiness check failed", "error", err)
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
