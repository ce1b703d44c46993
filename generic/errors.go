/*
errors.go - Centralized error types for the generic package

PURPOSE:
  All storage and lookup errors in one place for consistency.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Lookup errors - Missing employees or holidays
  2. Validation errors - Malformed periods, duplicate punches

USAGE:
    if generic.IsNotFound(err) {
        writeError(w, http.StatusNotFound, "Employee not found", err)
    }

SEE ALSO:
  - store.go: Uses these errors
  - hours/errors.go: Punch-level validation errors
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
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrHolidayNotFound is returned when deleting or reading an unknown holiday.
	ErrHolidayNotFound = errors.New("holiday not found")

	// ErrDuplicatePunch is returned when a punch ID is stored twice.
	ErrDuplicatePunch = errors.New("duplicate punch")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicatePunchError names the punch that already exists.
type DuplicatePunchError struct {
	PunchID    PunchID
	EmployeeID EmployeeID
}

func (e *DuplicatePunchError) Error() string {
	return fmt.Sprintf("punch %s already recorded for employee %s", e.PunchID, e.EmployeeID)
}

func (e *DuplicatePunchError) Unwrap() error {
	return ErrDuplicatePunch
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicatePunch) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrHolidayNotFound)
}
