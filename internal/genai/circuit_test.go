package genai

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          time.Hour,
	})

	for i := 0; i < 3; i++ {
		if err := cb.Allow(); err != nil {
			t.Fatalf("Allow() before threshold: %v", err)
		}
		cb.Failure()
	}

	if cb.State() != CircuitOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Allow() while open = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          time.Nanosecond,
	})

	cb.Failure()
	if cb.State() != CircuitOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	time.Sleep(time.Millisecond) // exceed open timeout

	if err := cb.Allow(); err != nil {
		t.Fatalf("Allow() after timeout: %v", err)
	}
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.State())
	}

	cb.Success()
	cb.Success()
	if cb.State() != CircuitClosed {
		t.Errorf("state after recovery = %v, want closed", cb.State())
	}
}

func TestCircuitHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          time.Nanosecond,
	})

	cb.Failure()
	time.Sleep(time.Millisecond)
	_ = cb.Allow() // transitions to half-open

	cb.Failure()
	if cb.State() != CircuitOpen {
		t.Errorf("state = %v, want open after half-open failure", cb.State())
	}
}

func TestCircuitSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})

	cb.Failure()
	cb.Success()
	cb.Failure()

	if cb.State() != CircuitClosed {
		t.Errorf("state = %v, want closed: success should reset failure count", cb.State())
	}
}
