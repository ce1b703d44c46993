// Package store provides in-memory implementations of the generic store
// interfaces. Memory mirrors the SQLite store's ordering and error contract,
// so the API can run on it in tests and demos without a database file.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[generic.EmployeeID]generic.Employee
	punches   map[generic.EmployeeID][]generic.PunchRecord
	punchIDs  map[generic.PunchID]bool
	holidays  map[string]generic.Holiday
}

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[generic.EmployeeID]generic.Employee),
		punches:   make(map[generic.EmployeeID][]generic.PunchRecord),
		punchIDs:  make(map[generic.PunchID]bool),
		holidays:  make(map[string]generic.Holiday),
	}
}

var (
	_ generic.EmployeeStore = (*Memory)(nil)
	_ generic.PunchStore    = (*Memory)(nil)
	_ generic.HolidayStore  = (*Memory)(nil)
)

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp generic.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id generic.EmployeeID) (*generic.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.employees[id]
	if !ok {
		return nil, generic.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]generic.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]generic.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// =============================================================================
// PUNCHES
// =============================================================================

// SavePunches adds records atomically: every record is checked before any write.
func (m *Memory) SavePunches(_ context.Context, records []generic.PunchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[generic.PunchID]bool, len(records))
	for _, rec := range records {
		if _, ok := m.employees[rec.EmployeeID]; !ok {
			return fmt.Errorf("punch %s: %w", rec.ID, generic.ErrEmployeeNotFound)
		}
		if m.punchIDs[rec.ID] || seen[rec.ID] {
			return &generic.DuplicatePunchError{PunchID: rec.ID, EmployeeID: rec.EmployeeID}
		}
		seen[rec.ID] = true
	}

	for _, rec := range records {
		list := append(m.punches[rec.EmployeeID], rec)
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Date != list[j].Date {
				return list[i].Date < list[j].Date
			}
			return list[i].Entry < list[j].Entry
		})
		m.punches[rec.EmployeeID] = list
		m.punchIDs[rec.ID] = true
	}
	return nil
}

func (m *Memory) PunchesInRange(_ context.Context, employeeID generic.EmployeeID, period generic.Period) ([]generic.PunchRecord, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, to := period.Start.Key(), period.End.Key()
	var result []generic.PunchRecord
	for _, rec := range m.punches[employeeID] {
		if from <= rec.Date && rec.Date <= to {
			result = append(result, rec)
		}
	}
	return result, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, h generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[id]; !ok {
		return generic.ErrHolidayNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) HolidaysInRange(_ context.Context, companyID string, period generic.Period) ([]generic.Holiday, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.Holiday
	for _, h := range m.holidays {
		if h.CompanyID != "" && h.CompanyID != companyID {
			continue
		}
		result = append(result, period.HolidaysIn(h)...)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// GetAllHolidays returns every holiday visible to a company, as stored.
func (m *Memory) GetAllHolidays(_ context.Context, companyID string) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.Holiday
	for _, h := range m.holidays {
		if h.CompanyID == "" || h.CompanyID == companyID {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = make(map[generic.EmployeeID]generic.Employee)
	m.punches = make(map[generic.EmployeeID][]generic.PunchRecord)
	m.punchIDs = make(map[generic.PunchID]bool)
	m.holidays = make(map[string]generic.Holiday)
	return nil
}
