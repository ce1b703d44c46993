package hours

import (
	"errors"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// RAW PUNCH - Attendance record as received
// =============================================================================

// RawPunch is an unvalidated attendance record. Date is an optional
// YYYY-MM-DD hint used only when neither timestamp yields a date.
type RawPunch struct {
	ID         generic.PunchID    `json:"id"`
	EmployeeID generic.EmployeeID `json:"employee_id,omitempty"`
	Entry      Timestamp          `json:"entry"`
	Exit       Timestamp          `json:"exit"`
	Date       string             `json:"date,omitempty"`
}

// RawPunchFromRecord reads a stored record back into its variant form.
func RawPunchFromRecord(rec generic.PunchRecord) RawPunch {
	return RawPunch{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Entry:      TimestampFromText(rec.Entry),
		Exit:       TimestampFromText(rec.Exit),
		Date:       rec.Date,
	}
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalize validates one record. Rejections are *InvalidPunchError.
//
// Checks, in order:
//  1. both timestamps absent          -> ErrNoValidTime
//  2. no date from entry/exit/Date    -> ErrMissingDate
//  3. a present timestamp won't parse -> ErrUnparseableTimestamp
//  4. one side absent                 -> ErrMissingEntry / ErrMissingExit
//  5. exit <= entry                   -> ErrNonPositiveInterval
func Normalize(raw RawPunch, loc *time.Location) (Punch, error) {
	reject := func(reason error) (Punch, error) {
		return Punch{}, &InvalidPunchError{PunchID: raw.ID, EmployeeID: raw.EmployeeID, Reason: reason}
	}

	if raw.Entry.IsAbsent() && raw.Exit.IsAbsent() {
		return reject(ErrNoValidTime)
	}

	entry, entryErr := parseSide(raw.Entry, loc)
	exit, exitErr := parseSide(raw.Exit, loc)

	if entry.IsZero() && exit.IsZero() {
		if _, err := generic.ParseDate(raw.Date); raw.Date == "" || err != nil {
			return reject(ErrMissingDate)
		}
	}

	switch {
	case entryErr != nil:
		return reject(entryErr)
	case exitErr != nil:
		return reject(exitErr)
	case raw.Entry.IsAbsent():
		return reject(ErrMissingEntry)
	case raw.Exit.IsAbsent():
		return reject(ErrMissingExit)
	case !exit.After(entry):
		return reject(ErrNonPositiveInterval)
	}

	return Punch{ID: raw.ID, EmployeeID: raw.EmployeeID, Entry: entry, Exit: exit}, nil
}

func parseSide(ts Timestamp, loc *time.Location) (time.Time, error) {
	if ts.IsAbsent() {
		return time.Time{}, nil
	}
	t, err := ParsePunchTimestamp(ts, loc)
	if err != nil {
		if errors.Is(err, ErrUnparseableTimestamp) {
			return time.Time{}, ErrUnparseableTimestamp
		}
		return time.Time{}, err
	}
	return t, nil
}

// NormalizeAll validates a batch. One bad record never aborts the others:
// valid punches come back in input order, rejections are collected.
func NormalizeAll(raws []RawPunch, loc *time.Location) ([]Punch, []*InvalidPunchError) {
	punches := make([]Punch, 0, len(raws))
	var invalid []*InvalidPunchError
	for _, raw := range raws {
		p, err := Normalize(raw, loc)
		if err != nil {
			var ipe *InvalidPunchError
			if errors.As(err, &ipe) {
				invalid = append(invalid, ipe)
				continue
			}
			invalid = append(invalid, &InvalidPunchError{PunchID: raw.ID, EmployeeID: raw.EmployeeID, Reason: err})
			continue
		}
		punches = append(punches, p)
	}
	return punches, invalid
}
