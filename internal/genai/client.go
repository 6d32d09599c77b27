// Package genai wraps the Genkit generation and embedding collaborators
// behind two plain functions: Generate(prompt) -> text and Embed(text) ->
// vector.
//
// The model service is a remote dependency with its own rate limits, so every
// call goes through a per-attempt rate limiter, a bounded exponential-backoff
// retry (transient-class failures only) and a circuit breaker. Callers that
// exhaust the budget receive a transient-classified error and are expected to
// degrade to a canned response rather than block.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/janseva/janseva/internal/faults"
)

// Options configures the client.
type Options struct {
	ModelName   string
	Temperature float32
	VectorDim   int           // expected embedding dimensionality
	CallTimeout time.Duration // per-attempt timeout (default 15s)
	Retry       RetryConfig
	RateLimit   rate.Limit // model calls per second (0 = unlimited)
	RateBurst   int
	Logger      *slog.Logger
}

// Client is the engine's handle on the generation collaborator.
// Safe for concurrent use.
type Client struct {
	g           *genkit.Genkit
	embedder    ai.Embedder
	modelName   string
	temperature float32
	vectorDim   int
	timeout     time.Duration
	retry       RetryConfig
	limiter     *rate.Limiter
	breaker     *CircuitBreaker
	logger      *slog.Logger
}

// NewClient creates a Client. The embedder must already be registered on g.
func NewClient(g *genkit.Genkit, embedder ai.Embedder, opts Options) *Client {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 15 * time.Second
	}
	if opts.Retry.MaxRetries == 0 {
		opts.Retry = DefaultRetryConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.RateLimit, burst)
	}

	return &Client{
		g:           g,
		embedder:    embedder,
		modelName:   opts.ModelName,
		temperature: opts.Temperature,
		vectorDim:   opts.VectorDim,
		timeout:     opts.CallTimeout,
		retry:       opts.Retry,
		limiter:     limiter,
		breaker:     NewCircuitBreaker(DefaultCircuitBreakerConfig()),
		logger:      opts.Logger,
	}
}

// Generate produces text for the given prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := c.executeWithRetry(ctx, "generate", func(callCtx context.Context) error {
		resp, err := genkit.Generate(callCtx, c.g,
			ai.WithModelName(c.modelName),
			ai.WithPrompt(prompt),
			ai.WithConfig(map[string]any{"temperature": c.temperature}),
		)
		if err != nil {
			return err
		}
		text = resp.Text()
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// Embed produces the embedding vector for the given text. The returned
// vector always has the configured fixed dimensionality.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := c.executeWithRetry(ctx, "embed", func(callCtx context.Context) error {
		resp, err := c.embedder.Embed(callCtx, &ai.EmbedRequest{
			Input: []*ai.Document{ai.DocumentFromText(text, nil)},
		})
		if err != nil {
			return err
		}
		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
			return fmt.Errorf("empty embedding returned")
		}
		vec = resp.Embeddings[0].Embedding
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.vectorDim > 0 && len(vec) != c.vectorDim {
		return nil, faults.Validationf("embedding dimension %d, index expects %d", len(vec), c.vectorDim)
	}
	return vec, nil
}

// executeWithRetry runs fn under the circuit breaker, rate limiter and
// bounded exponential-backoff retry. Only transient-class failures are
// retried; everything else fails fast.
func (c *Client) executeWithRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	delay := c.retry.InitialInterval
	start := time.Now()

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if err := c.breaker.Allow(); err != nil {
			return faults.Transient(fmt.Errorf("%s: %w", op, err))
		}

		// Rate limit each attempt, retries included.
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return faults.Transient(fmt.Errorf("%s rate limit wait: %w", op, err))
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := fn(callCtx)
		cancel()

		if err == nil {
			c.breaker.Success()
			c.logger.Debug("model call succeeded",
				"op", op, "attempts", attempt+1, "elapsed", time.Since(start))
			return nil
		}

		lastErr = err
		c.breaker.Failure()

		if !transientError(err) {
			return fmt.Errorf("%s: %w", op, err)
		}
		if attempt == c.retry.MaxRetries {
			break
		}

		c.logger.Debug("retrying model call",
			"op", op, "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return faults.Transient(fmt.Errorf("%s canceled during retry: %w", op, ctx.Err()))
		case <-time.After(delay):
			delay = min(delay*2, c.retry.MaxInterval)
		}
	}

	return faults.Transient(fmt.Errorf("%s after %d retries (elapsed %v): %w",
		op, c.retry.MaxRetries, time.Since(start), lastErr))
}
