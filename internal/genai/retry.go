package genai

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RetryConfig configures the retry behavior for model calls.
type RetryConfig struct {
	MaxRetries      int           // maximum retry attempts after the first call
	InitialInterval time.Duration // initial backoff interval
	MaxInterval     time.Duration // backoff cap
}

// DefaultRetryConfig returns sensible defaults for remote model APIs.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

// transientError reports whether an error is in the network/rate-limit class
// and should trigger a retry. Schema and not-found class failures are never
// retried.
func transientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := err.Error()

	// Rate limit errors
	if containsAny(errStr, "rate limit", "quota exceeded", "429") {
		return true
	}
	// Transient server errors
	if containsAny(errStr, "500", "502", "503", "504", "unavailable") {
		return true
	}
	// Network errors
	if containsAny(errStr, "connection reset", "timeout", "temporary") {
		return true
	}

	return false
}

// containsAny checks if s contains any of the substrings (case-insensitive).
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
