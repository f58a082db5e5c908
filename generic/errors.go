/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place for consistency and discoverability.
  The wage calculator and the aggregator never return errors; these types
  belong to parsing, storage and settings validation around them.

ERROR CATEGORIES:
  1. Store errors - Record and settlement persistence
  2. Validation errors - Rejected settings or periods
  3. Parse errors - Malformed dates, clock times, day-type labels

USAGE:
  if errors.Is(err, generic.ErrRecordNotFound) {
      // 404
  }

SEE ALSO:
  - payroll/book.go: Returns these errors
  - api/handlers.go: Maps them to HTTP status codes
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
	// ErrRecordNotFound is returned when a record id does not exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateRecord is returned when a record with the same id already exists.
	ErrDuplicateRecord = errors.New("duplicate record id")

	// ErrAlreadySettled is returned when a settlement cycle was archived before.
	ErrAlreadySettled = errors.New("period already settled")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidClockTime is returned for clock strings that are not HH:MM.
	ErrInvalidClockTime = errors.New("invalid clock time")

	// ErrUnknownDayType is returned for day-type labels outside the closed set.
	ErrUnknownDayType = errors.New("unknown day type")

	// ErrValidation is the parent of every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ParseError reports input that could not be converted to a domain value.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidClockTime) ||
		errors.Is(err, ErrUnknownDayType)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsConflict returns true if the write collided with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateRecord) ||
		errors.Is(err, ErrAlreadySettled)
}
