/*
Package generic provides the domain-agnostic building blocks of the payroll engine.

PURPOSE:
  This package holds the calendar primitives, identifiers and storage contracts
  shared by the hour classification engine (package hours), the SQLite store,
  and the HTTP API. Nothing here knows about overtime or night hours.

KEY CONCEPTS:
  - TimePoint: A calendar date (UTC wall clock), used as per-day key
  - Period: Inclusive date range a payroll bulletin covers
  - HolidayCalendar: Injected capability answering IsHoliday(date)
  - PunchRecord: A clock-in/clock-out pair as captured, before normalization
  - Employee: Worker metadata, including the hourly rate used for valuation

DESIGN PRINCIPLES:
  1. Injection: Holiday calendars are passed in, never held in package state
  2. Precision: Money uses decimal.Decimal; hours stay float64 decimal hours
  3. Type Safety: EmployeeID/PunchID are distinct string types
  4. Recompute: Punches are stored raw; classification runs on every request

USAGE:
  cal := generic.NewHolidaySet(generic.Holiday{
      Date: generic.NewTimePoint(2025, time.December, 25),
      Name: "Natal",
  })
  cal.IsHoliday(generic.NewTimePoint(2025, time.December, 25)) // true

SEE ALSO:
  - time.go: TimePoint and holiday calendars
  - store.go: Persistence interfaces
  - hours/engine.go: The consumer of all of the above
*/
package generic

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type PunchID string

// =============================================================================
// EMPLOYEE - Worker metadata consumed by valuation and reports
// =============================================================================

type Employee struct {
	ID        EmployeeID
	Name      string
	Position  string
	CompanyID string

	// HourlyRate is the base wage per hour. Zero means no wage is
	// configured for the position; valuation then yields zero.
	HourlyRate decimal.Decimal

	CreatedAt time.Time
}

// =============================================================================
// PUNCH RECORD - Attendance pair as received from the provider
// =============================================================================

// PunchRecord is a stored attendance record. Entry and Exit keep the text
// form of the timestamps (ISO-8601 or epoch digits); an empty string means the
// side is missing. Normalization happens in package hours on every read.
type PunchRecord struct {
	ID         PunchID
	EmployeeID EmployeeID
	Entry      string
	Exit       string
	Date       string // YYYY-MM-DD hint, used for range queries
	Source     string // e.g. "api", "import", "scenario"
	CreatedAt  time.Time
}
