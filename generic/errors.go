/*
errors.go - Centralized error types for the engine's service layer

PURPOSE:
  The scoring core never fails: malformed records are normalized instead.
  Errors only come from the layers around it (stores, API parsing,
  calibration loading). They are all defined here for consistency.

ERROR CATEGORIES:
  1. Lookup errors - Missing members or records
  2. Validation errors - Unparseable input at the edge
  3. Store errors - Conflicts reported by a persistence adapter

USAGE:
  if generic.IsNotFound(err) {
      // 404
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
	// ErrMemberNotFound is returned when a referenced member doesn't exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrRecordNotFound is returned when an earning, day status or work slot doesn't exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrDuplicateRecord is returned when a record ID is already taken.
	ErrDuplicateRecord = errors.New("duplicate record")

	// ErrInvalidKind is returned for an unknown category or status type.
	ErrInvalidKind = errors.New("invalid kind")

	// ErrInvalidPeriod is returned when a query window cannot be parsed.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidClockTime is returned for a malformed HH:MM value.
	ErrInvalidClockTime = errors.New("invalid clock time")

	// ErrInvalidCalibration is returned when a calibration table is rejected.
	ErrInvalidCalibration = errors.New("invalid calibration")

	// ErrInvalidInput is returned for a missing or malformed record field.
	ErrInvalidInput = errors.New("invalid input")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RecordError ties a failure to a specific record.
type RecordError struct {
	Kind string // "earning", "day_status", "work_slot", "member", "snapshot"
	ID   string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// NotFound builds a RecordError wrapping the right sentinel for kind.
func NotFound(kind, id string) error {
	sentinel := ErrRecordNotFound
	if kind == "member" {
		sentinel = ErrMemberNotFound
	}
	return &RecordError{Kind: kind, ID: id, Err: sentinel}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidClockTime) ||
		errors.Is(err, ErrInvalidCalibration) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDuplicateRecord)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}
