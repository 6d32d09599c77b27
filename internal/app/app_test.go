package app

import (
	"testing"

	"github.com/janseva/janseva/internal/log"
)

func TestCloseRunsCleanups(t *testing.T) {
	var dbClosed, otelClosed, canceled bool
	a := &App{
		Logger:      log.NewNop(),
		dbCleanup:   func() { dbClosed = true },
		otelCleanup: func() { otelClosed = true },
		cancel:      func() { canceled = true },
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !dbClosed || !otelClosed || !canceled {
		t.Errorf("cleanups ran = db:%v otel:%v cancel:%v, want all true",
			dbClosed, otelClosed, canceled)
	}
}

func TestCloseOnPartialApp(t *testing.T) {
	a := &App{Logger: log.NewNop()}
	if err := a.Close(); err != nil {
		t.Fatalf("Close on empty app: %v", err)
	}
}
