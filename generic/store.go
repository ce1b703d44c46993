/*
store.go - Persistence interfaces for employees, punches and holidays

PURPOSE:
  Defines the boundary between the calculation core and storage.
  Storage is an external collaborator: the engine never touches it,
  the API layer loads data, hands it to the engine, and renders results.

KEY INTERFACES:
  EmployeeStore: Employee metadata (hourly rate for valuation)
  PunchStore:    Raw attendance records, queried per employee and period
  HolidayStore:  Holiday dates backing a HolidayCalendar

RAW STORAGE:
  Punches are stored as received (text timestamps). Every calculation
  re-normalizes and re-classifies them, so a rules change or a holiday
  edit is reflected without migrating stored results.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - hours/normalize.go: Turns PunchRecord into validated punches
  - api/handlers.go: Loads from stores, runs the engine
*/
package generic

import "context"

// EmployeeStore persists worker metadata.
type EmployeeStore interface {
	SaveEmployee(ctx context.Context, emp Employee) error

	// GetEmployee returns ErrEmployeeNotFound if the ID is unknown.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	ListEmployees(ctx context.Context) ([]Employee, error)
}

// PunchStore persists raw attendance records.
type PunchStore interface {
	// SavePunches stores all records atomically. A reused punch ID fails
	// the whole batch with a DuplicatePunchError.
	SavePunches(ctx context.Context, records []PunchRecord) error

	// PunchesInRange returns the employee's records whose Date falls in the
	// period, ordered by Date then Entry.
	PunchesInRange(ctx context.Context, employeeID EmployeeID, period Period) ([]PunchRecord, error)
}

// HolidayStore persists holiday dates.
type HolidayStore interface {
	SaveHoliday(ctx context.Context, h Holiday) error

	// DeleteHoliday returns ErrHolidayNotFound if the ID is unknown.
	DeleteHoliday(ctx context.Context, id string) error

	// HolidaysInRange returns the company's holidays and the global ones
	// (empty CompanyID) falling in the period. Recurring holidays are
	// returned once per year of the period, dated in that year.
	HolidaysInRange(ctx context.Context, companyID string, period Period) ([]Holiday, error)
}
