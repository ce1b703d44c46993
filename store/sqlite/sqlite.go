/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists employees, raw punches and holidays. In production, the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  generic.EmployeeStore: Employee metadata and hourly rates
  generic.PunchStore:    Raw attendance records
  generic.HolidayStore:  Company and global holidays

RAW PUNCHES:
  Entry and exit are stored exactly as received (ISO text or epoch digits,
  empty when missing). Classification is never stored: every bulletin
  re-normalizes and re-buckets, so rule or holiday changes apply at once.

KEY TABLES:
  employees: Worker metadata, hourly_rate kept as decimal text
  punches:   Raw punch pairs, indexed by (employee_id, date)
  holidays:  Company-specific ('' company = global), optionally recurring

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

const dateLayout = "2006-01-02"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ generic.EmployeeStore = (*Store)(nil)
	_ generic.PunchStore    = (*Store)(nil)
	_ generic.HolidayStore  = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		company_id TEXT NOT NULL DEFAULT '',
		hourly_rate TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	-- Raw punches (never classified at rest)
	CREATE TABLE IF NOT EXISTS punches (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		entry TEXT NOT NULL DEFAULT '',
		exit TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	-- Hot path: bulletin for one employee over a period
	CREATE INDEX IF NOT EXISTS idx_punches_employee_date
		ON punches(employee_id, date, entry);

	-- Holidays (company-specific and global)
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_company_date
		ON holidays(company_id, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(company_id, date, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE (generic.EmployeeStore interface)
// =============================================================================

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp generic.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO employees (id, name, position, company_id, hourly_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			position = excluded.position,
			company_id = excluded.company_id,
			hourly_rate = excluded.hourly_rate
	`

	_, err := s.db.ExecContext(ctx, query,
		string(emp.ID), emp.Name, emp.Position, emp.CompanyID,
		emp.HourlyRate.String(),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving employee %s: %w", emp.ID, err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (*generic.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, position, company_id, hourly_rate, created_at FROM employees WHERE id = ?",
		string(id),
	)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]generic.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, position, company_id, hourly_rate, created_at FROM employees ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []generic.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (generic.Employee, error) {
	var emp generic.Employee
	var id, rate, createdAt string
	if err := row.Scan(&id, &emp.Name, &emp.Position, &emp.CompanyID, &rate, &createdAt); err != nil {
		return generic.Employee{}, err
	}
	emp.ID = generic.EmployeeID(id)

	hourly, err := decimal.NewFromString(rate)
	if err != nil {
		return generic.Employee{}, fmt.Errorf("employee %s has invalid hourly_rate %q: %w", id, rate, err)
	}
	emp.HourlyRate = hourly
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return emp, nil
}

// =============================================================================
// PUNCH STORE (generic.PunchStore interface)
// =============================================================================

// SavePunches stores all records in one transaction.
func (s *Store) SavePunches(ctx context.Context, records []generic.PunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO punches (id, employee_id, entry, exit, date, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			string(rec.ID), string(rec.EmployeeID),
			rec.Entry, rec.Exit, rec.Date, rec.Source, now,
		)
		if isUniqueConstraintError(err) {
			return &generic.DuplicatePunchError{PunchID: rec.ID, EmployeeID: rec.EmployeeID}
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("punch %s: %w", rec.ID, generic.ErrEmployeeNotFound)
		}
		if err != nil {
			return fmt.Errorf("saving punch %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// PunchesInRange returns an employee's punches dated within the period.
func (s *Store) PunchesInRange(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]generic.PunchRecord, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, entry, exit, date, source, created_at
		FROM punches
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC, entry ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(employeeID), period.Start.Key(), period.End.Key())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []generic.PunchRecord
	for rows.Next() {
		var rec generic.PunchRecord
		var id, empID, createdAt string
		if err := rows.Scan(&id, &empID, &rec.Entry, &rec.Exit, &rec.Date, &rec.Source, &createdAt); err != nil {
			return nil, err
		}
		rec.ID = generic.PunchID(id)
		rec.EmployeeID = generic.EmployeeID(empID)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// HOLIDAY STORE (generic.HolidayStore interface)
// =============================================================================

// SaveHoliday saves a holiday to the database.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, company_id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_id, date, name) DO UPDATE SET
			recurring = excluded.recurring
		ON CONFLICT(id) DO UPDATE SET
			company_id = excluded.company_id,
			date = excluded.date,
			name = excluded.name,
			recurring = excluded.recurring
	`

	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		h.CompanyID,
		h.Date.Time.Format(dateLayout),
		h.Name,
		h.Recurring,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving holiday %s: %w", h.Date.Key(), err)
	}
	return nil
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return generic.ErrHolidayNotFound
	}
	return nil
}

// HolidaysInRange returns company and global holidays within the period.
// Recurring holidays are expanded into each year of the period.
func (s *Store) HolidaysInRange(ctx context.Context, companyID string, period generic.Period) ([]generic.Holiday, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, date, name, recurring
		FROM holidays
		WHERE (company_id = ? OR company_id = '')
		  AND (recurring = TRUE OR (date >= ? AND date <= ?))
		ORDER BY date ASC
	`

	stored, err := s.queryHolidays(ctx, query, companyID, period.Start.Key(), period.End.Key())
	if err != nil {
		return nil, err
	}

	var holidays []generic.Holiday
	for _, h := range stored {
		holidays = append(holidays, period.HolidaysIn(h)...)
	}
	sort.SliceStable(holidays, func(i, j int) bool { return holidays[i].Date.Before(holidays[j].Date) })
	return holidays, nil
}

// GetAllHolidays returns every holiday visible to a company (for admin UI).
func (s *Store) GetAllHolidays(ctx context.Context, companyID string) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, company_id, date, name, recurring
		FROM holidays
		WHERE company_id = ? OR company_id = ''
		ORDER BY date ASC
	`
	return s.queryHolidays(ctx, query, companyID)
}

func (s *Store) queryHolidays(ctx context.Context, query string, args ...any) ([]generic.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &h.CompanyID, &dateStr, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		date, err := generic.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("holiday %s has invalid date %q: %w", h.ID, dateStr, err)
		}
		h.Date = date
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data (for demo scenario loading).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"punches", "employees", "holidays"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY constraint failed"))
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
