/*
errors.go - Centralized error types for the accounting engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Missing argument - a required value is absent (journal, warning, ...)
  2. Invalid value    - a numeric field violates a domain constraint
  3. Not found        - the repository has no data for a key
  4. Internal         - an expected related value vanished mid-operation

NOT FOUND POLICY:
  Lookups return (nil, nil) when the repository has nothing for the key.
  ErrNotFound is only used where absence must travel as an error
  (HTTP responses, store write paths).

USAGE:
  if errors.Is(err, generic.ErrInvalidValue) {
      var iv *generic.InvalidValueError
      errors.As(err, &iv)
      fmt.Println(iv.Field)
  }
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingArgument is returned when a required value is absent.
	ErrMissingArgument = errors.New("missing argument")

	// ErrInvalidValue is returned when a value violates a domain constraint.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNotFound is returned when a referenced accounting or account doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInternal is returned when an invariant of the engine itself is broken.
	ErrInternal = errors.New("internal error")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MissingArgumentError names the absent parameter.
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing argument: %s", e.Name)
}

func (e *MissingArgumentError) Unwrap() error {
	return ErrMissingArgument
}

// InvalidValueError names the offending field and why it was rejected.
type InvalidValueError struct {
	Field  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}

func (e *InvalidValueError) Unwrap() error {
	return ErrInvalidValue
}

// InternalError names the internal value that was unexpectedly absent.
// It is fatal at the point of detection.
type InternalError struct {
	Value string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: missing %s", e.Value)
}

func (e *InternalError) Unwrap() error {
	return ErrInternal
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// Missing returns a MissingArgumentError for name.
func Missing(name string) error {
	return &MissingArgumentError{Name: name}
}

// BelowZero returns the InvalidValueError used by all non-negative fields.
func BelowZero(field string) error {
	return &InvalidValueError{Field: field, Reason: "cannot be below 0"}
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingArgument) ||
		errors.Is(err, ErrInvalidValue)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInternal returns true if the error is an engine invariant violation.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}
