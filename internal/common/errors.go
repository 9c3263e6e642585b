// Package common defines shared constants and sentinel errors used across
// client and server layers of MediGenie. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Derived-state errors: the inference response did not conform to the
	// expected schema. Local state is left unchanged.
	ErrMalformedDerivedState = errors.New("malformed derived state")

	// Transport errors: network failure, non-2xx status or timeout while
	// talking to the inference service.
	ErrInferenceUnavailable = errors.New("inference service unavailable")

	// Caller errors: an operation was invoked without its prerequisites.
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrNotRegistered      = fmt.Errorf("%w: profile is not registered", ErrPreconditionFailed)
	ErrAlreadyRegistered  = fmt.Errorf("%w: profile is already registered", ErrPreconditionFailed)
	ErrNoTwin             = fmt.Errorf("%w: digital twin has not been built yet", ErrPreconditionFailed)

	// Local input validation.
	ErrValidation = errors.New("validation error")

	// Concurrency guards.
	ErrInFlight    = errors.New("request of the same kind already in flight")
	ErrStaleResult = errors.New("result superseded by a newer request")
)

// ValidationError describes a single rejected input field. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid is a shorthand constructor for ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
