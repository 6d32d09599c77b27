// Package faults defines the error taxonomy shared by every engine component.
//
// Each failure crossing a component boundary is classified into a kind
// before it reaches the dialogue orchestrator, which converts it into a
// citizen-facing message. Raw internal errors never reach the output channel.
//
// Check kinds with errors.Is against the exported sentinels:
//
//	if errors.Is(err, faults.ErrNotFound) { ... }
//
// or inspect the classified kind directly with KindOf.
package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for propagation policy decisions.
type Kind int

const (
	// KindUnknown marks an unclassified error.
	KindUnknown Kind = iota

	// KindTransient marks network or rate-limit class failures.
	// Retried with backoff, then degraded to a canned response.
	KindTransient

	// KindValidation marks malformed extraction or schema mismatches.
	// Triggers a clarification question, never surfaced as a system error.
	KindValidation

	// KindNotFound marks unknown scheme, tracking id, or session lookups.
	// Surfaced as a plain "not found" message.
	KindNotFound

	// KindCapacity marks store or session limits being hit.
	// Surfaced with a retry-later message.
	KindCapacity

	// KindConflict marks a request that contradicts current state, such as
	// an illegal status transition. Mapped to HTTP 409.
	KindConflict
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindCapacity:
		return "capacity"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind. Classified errors match these via errors.Is.
var (
	ErrTransient  = errors.New("transient dependency failure")
	ErrValidation = errors.New("validation failure")
	ErrNotFound   = errors.New("not found")
	ErrCapacity   = errors.New("capacity exceeded")
	ErrConflict   = errors.New("state conflict")
)

// Error wraps an underlying error with its classified kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying error chain.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel corresponding to the error's kind, so
// errors.Is(err, faults.ErrNotFound) works on classified errors.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransient:
		return e.Kind == KindTransient
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrCapacity:
		return e.Kind == KindCapacity
	case ErrConflict:
		return e.Kind == KindConflict
	}
	return false
}

// Transient classifies err as a transient dependency failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindTransient, Err: err}
}

// Validation classifies err as a validation failure.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindValidation, Err: err}
}

// NotFound classifies err as a not-found failure.
func NotFound(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindNotFound, Err: err}
}

// Capacity classifies err as a capacity failure.
func Capacity(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindCapacity, Err: err}
}

// Conflict classifies err as a state conflict.
func Conflict(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindConflict, Err: err}
}

// Transientf creates a transient error from a format string.
func Transientf(format string, args ...any) error {
	return &Error{Kind: KindTransient, Err: fmt.Errorf(format, args...)}
}

// Validationf creates a validation error from a format string.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

// NotFoundf creates a not-found error from a format string.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

// Capacityf creates a capacity error from a format string.
func Capacityf(format string, args ...any) error {
	return &Error{Kind: KindCapacity, Err: fmt.Errorf(format, args...)}
}

// Conflictf creates a conflict error from a format string.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the classified kind of err, or KindUnknown if the error
// carries no classification anywhere in its chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Message returns the classified error's message without the kind prefix or
// any outer wrapping, suitable for a client-facing body. Unclassified errors
// return err.Error(); callers should not expose those.
func Message(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Retryable reports whether err should be retried under the engine's
// bounded retry policy. Only transient-class failures are ever retried;
// validation and not-found failures fail fast.
func Retryable(err error) bool {
	return KindOf(err) == KindTransient
}
