package faults

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		sentinel error
	}{
		{"transient", Transientf("embed call: %s", "rate limited"), KindTransient, ErrTransient},
		{"validation", Validationf("missing city"), KindValidation, ErrValidation},
		{"not found", NotFoundf("scheme %q", "pm-kisan"), KindNotFound, ErrNotFound},
		{"capacity", Capacityf("session store full"), KindCapacity, ErrCapacity},
		{"conflict", Conflictf("illegal transition %s -> %s", "closed", "submitted"), KindConflict, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Errorf("KindOf = %v, want %v", got, tt.wantKind)
			}
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.sentinel)
			}
		})
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NotFoundf("tracking id %q", "JS-20250101-00042")
	wrapped := fmt.Errorf("lookup issue: %w", inner)

	if KindOf(wrapped) != KindNotFound {
		t.Errorf("KindOf(wrapped) = %v, want KindNotFound", KindOf(wrapped))
	}
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("wrapped error no longer matches ErrNotFound")
	}
}

func TestNilPassthrough(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
	if Validation(nil) != nil {
		t.Error("Validation(nil) should be nil")
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(Transientf("503 from model")) {
		t.Error("transient errors must be retryable")
	}
	if Retryable(Validationf("bad schema")) {
		t.Error("validation errors must not be retryable")
	}
	if Retryable(NotFoundf("gone")) {
		t.Error("not-found errors must not be retryable")
	}
	if Retryable(errors.New("plain")) {
		t.Error("unclassified errors must not be retryable")
	}
}

func TestMessageStripsKindPrefix(t *testing.T) {
	err := Conflictf("illegal transition %s -> %s", "closed", "submitted")
	if got, want := Message(err), "illegal transition closed -> submitted"; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}

	wrapped := fmt.Errorf("webhook: %w", Validationf("unknown status %q", "escalated"))
	if got, want := Message(wrapped), `unknown status "escalated"`; got != want {
		t.Errorf("Message(wrapped) = %q, want %q", got, want)
	}

	if got := Message(errors.New("plain")); got != "plain" {
		t.Errorf("Message(plain) = %q, want %q", got, "plain")
	}
}

func TestKindUnknownForPlainErrors(t *testing.T) {
	if KindOf(errors.New("boom")) != KindUnknown {
		t.Error("plain errors should classify as KindUnknown")
	}
}
