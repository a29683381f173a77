/*
errors.go - Centralized error taxonomy

PURPOSE:
  All error categories in one place. Every failing operation in the system
  resolves to one of three kinds, and callers branch with errors.Is:

  1. Validation - malformed or missing input; the caller's fault, don't retry
  2. Conflict   - a state-transition guard lost; refetch state, then decide
  3. NotFound   - a referenced entity doesn't exist

  All three are terminal for the current request. Nothing is silently
  swallowed; every error carries a specific, actionable message.

USAGE:
  if inventory.IsConflict(err) {
      // e.g. shift already closed, order already received
  }

SEE ALSO:
  - bar/service.go: produces these from state-transition guards
  - api/handlers.go: maps them to 400/409/404
*/
package inventory

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all malformed-input errors.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is the root of all state-transition guard violations:
	// concurrent or duplicate requests where exactly one caller may win.
	ErrConflict = errors.New("conflict")

	// ErrNotFound is the root of all missing-entity errors.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for a named field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError reports a lost state-transition guard. Entity and Message
// describe what was found, so the error is actionable ("shift already
// closed") rather than generic.
type ConflictError struct {
	Entity  string
	ID      string
	Message string
}

func (e *ConflictError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Conflict builds a ConflictError.
func Conflict(entity, id, message string) error {
	return &ConflictError{Entity: entity, ID: id, Message: message}
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
