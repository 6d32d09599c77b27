package testutil

import "log/slog"

// DiscardLogger returns a slog.Logger that discards all output. Components
// taking the internal/log alias can use log.NewNop() directly; this helper
// exists for tests that build a *slog.Logger without that import.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
