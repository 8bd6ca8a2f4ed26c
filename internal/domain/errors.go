// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Error kinds reported by the ledger and its store. Callers match them with
// errors.Is; the typed errors below carry the details.
var (
	// ErrValidation is returned when an input field is malformed or missing,
	// or when imported JSON cannot be decoded.
	ErrValidation = errors.New("validation failed")

	// ErrCapacity is returned when adding credits would exceed the declared target.
	ErrCapacity = errors.New("credit target exceeded")

	// ErrState is returned when an operation is attempted in a ledger state that forbids it.
	ErrState = errors.New("operation not permitted in current state")

	// ErrPersistence is returned when the underlying store is unavailable or a write failed.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError describes the first invalid field found in an input.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CapacityError reports a course that does not fit under the credit target.
type CapacityError struct {
	Current float64
	Adding  float64
	Target  float64
}

// Error implements the error interface for CapacityError.
func (e *CapacityError) Error() string {
	return fmt.Sprintf(
		"adding %s credits would exceed the target: current %s, target %s",
		FormatCredits(e.Adding),
		FormatCredits(e.Current),
		FormatCredits(e.Target),
	)
}

// Is reports whether target is ErrCapacity.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacity
}

// StateError reports an operation rejected by the ledger state machine.
// Remaining is the credit gap still to be filled; it is negative when the
// ledger holds more credits than its target.
type StateError struct {
	Operation string
	Reason    string
	Target    float64
	Current   float64
	Remaining float64
}

// Error implements the error interface for StateError.
func (e *StateError) Error() string {
	if e.Target > 0 {
		return fmt.Sprintf("%s not permitted: %s (target %s, current %s, remaining %s)",
			e.Operation,
			e.Reason,
			FormatCredits(e.Target),
			FormatCredits(e.Current),
			FormatCredits(e.Remaining),
		)
	}
	return fmt.Sprintf("%s not permitted: %s", e.Operation, e.Reason)
}

// Is reports whether target is ErrState.
func (e *StateError) Is(target error) bool {
	return target == ErrState
}

// PersistenceError wraps a store failure with the ledger operation that hit it.
type PersistenceError struct {
	Operation string
	Err       error
}

// Error implements the error interface for PersistenceError.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed to persist: %v", e.Operation, e.Err)
}

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
