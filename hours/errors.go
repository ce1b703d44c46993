package hours

import (
	"errors"
	"fmt"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrInvalidPunch wraps every normalization rejection.
	ErrInvalidPunch = errors.New("invalid punch")

	ErrNoValidTime          = errors.New("no valid time")
	ErrMissingDate          = errors.New("no calendar date can be derived")
	ErrMissingEntry         = errors.New("missing entry timestamp")
	ErrMissingExit          = errors.New("missing exit timestamp")
	ErrUnparseableTimestamp = errors.New("unparseable timestamp")
	ErrNonPositiveInterval  = errors.New("exit is not after entry")

	// ErrInvalidRules is returned by Rules.Validate.
	ErrInvalidRules = errors.New("invalid rules")

	// ErrInvalidHoursFormat is returned by ParseFormattedHours.
	ErrInvalidHoursFormat = errors.New("invalid HH:MM value")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InvalidPunchError records why a punch was dropped. It matches both
// ErrInvalidPunch and its Reason with errors.Is.
type InvalidPunchError struct {
	PunchID    generic.PunchID
	EmployeeID generic.EmployeeID
	Reason     error
}

func (e *InvalidPunchError) Error() string {
	return fmt.Sprintf("invalid punch %s: %v", e.PunchID, e.Reason)
}

func (e *InvalidPunchError) Unwrap() []error {
	return []error{ErrInvalidPunch, e.Reason}
}

// RulesError names the offending rules field.
type RulesError struct {
	Field  string
	Reason string
}

func (e *RulesError) Error() string {
	return fmt.Sprintf("invalid rules: %s %s", e.Field, e.Reason)
}

func (e *RulesError) Unwrap() error { return ErrInvalidRules }

// IsClientError returns true if the error comes from bad input data.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPunch) ||
		errors.Is(err, ErrInvalidRules) ||
		errors.Is(err, ErrInvalidHoursFormat)
}
