package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func saveEmployee(t *testing.T, store *sqlite.Store, id, rate string) {
	t.Helper()
	require.NoError(t, store.SaveEmployee(context.Background(), generic.Employee{
		ID:         generic.EmployeeID(id),
		Name:       "Maria " + id,
		Position:   "operator",
		CompanyID:  "acme",
		HourlyRate: decimal.RequireFromString(rate),
	}))
}

func TestEmployees_SaveGetList(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	saveEmployee(t, store, "e2", "25.50")
	saveEmployee(t, store, "e1", "18.75")

	emp, err := store.GetEmployee(ctx, "e2")
	require.NoError(t, err)
	assert.Equal(t, "Maria e2", emp.Name)
	assert.Equal(t, "acme", emp.CompanyID)
	assert.Equal(t, "25.5", emp.HourlyRate.String())
	assert.False(t, emp.CreatedAt.IsZero())

	// Upsert keeps the row and updates the rate.
	saveEmployee(t, store, "e2", "30")
	emp, err = store.GetEmployee(ctx, "e2")
	require.NoError(t, err)
	assert.True(t, emp.HourlyRate.Equal(decimal.NewFromInt(30)))

	list, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, generic.EmployeeID("e1"), list[0].ID)
}

func TestEmployees_NotFound(t *testing.T) {
	_, err := newStore(t).GetEmployee(context.Background(), "ghost")
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
	assert.True(t, generic.IsNotFound(err))
}

func TestPunches_SaveAndRange(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	saveEmployee(t, store, "e1", "10")

	records := []generic.PunchRecord{
		{ID: "p3", EmployeeID: "e1", Entry: "2025-03-11T08:00:00Z", Exit: "2025-03-11T17:00:00Z", Date: "2025-03-11", Source: "api"},
		{ID: "p1", EmployeeID: "e1", Entry: "2025-03-10T13:00:00Z", Exit: "2025-03-10T17:00:00Z", Date: "2025-03-10", Source: "api"},
		{ID: "p2", EmployeeID: "e1", Entry: "2025-03-10T08:00:00Z", Exit: "", Date: "2025-03-10", Source: "api"},
		{ID: "p4", EmployeeID: "e1", Entry: "1741852800", Exit: "1741881600", Date: "2025-03-13", Source: "import"},
	}
	require.NoError(t, store.SavePunches(ctx, records))

	period := generic.Period{Start: generic.NewTimePoint(2025, time.March, 10), End: generic.NewTimePoint(2025, time.March, 11)}
	got, err := store.PunchesInRange(ctx, "e1", period)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, generic.PunchID("p2"), got[0].ID)
	assert.Equal(t, "", got[0].Exit)
	assert.Equal(t, generic.PunchID("p1"), got[1].ID)
	assert.Equal(t, generic.PunchID("p3"), got[2].ID)

	all, err := store.PunchesInRange(ctx, "e1", generic.MonthPeriod(2025, time.March))
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "1741852800", all[3].Entry)
	assert.Equal(t, "import", all[3].Source)
}

func TestPunches_DuplicateRollsBackBatch(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	saveEmployee(t, store, "e1", "10")

	require.NoError(t, store.SavePunches(ctx, []generic.PunchRecord{
		{ID: "p1", EmployeeID: "e1", Entry: "2025-03-10T08:00:00Z", Exit: "2025-03-10T12:00:00Z", Date: "2025-03-10"},
	}))

	err := store.SavePunches(ctx, []generic.PunchRecord{
		{ID: "p2", EmployeeID: "e1", Entry: "2025-03-11T08:00:00Z", Exit: "2025-03-11T12:00:00Z", Date: "2025-03-11"},
		{ID: "p1", EmployeeID: "e1", Entry: "2025-03-12T08:00:00Z", Exit: "2025-03-12T12:00:00Z", Date: "2025-03-12"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrDuplicatePunch)

	var dup *generic.DuplicatePunchError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, generic.PunchID("p1"), dup.PunchID)

	got, err := store.PunchesInRange(ctx, "e1", generic.MonthPeriod(2025, time.March))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPunches_UnknownEmployee(t *testing.T) {
	err := newStore(t).SavePunches(context.Background(), []generic.PunchRecord{
		{ID: "p1", EmployeeID: "ghost", Entry: "2025-03-10T08:00:00Z", Exit: "2025-03-10T12:00:00Z", Date: "2025-03-10"},
	})
	assert.ErrorIs(t, err, generic.ErrEmployeeNotFound)
}

func TestPunches_InvalidPeriod(t *testing.T) {
	period := generic.Period{Start: generic.NewTimePoint(2025, time.March, 10), End: generic.NewTimePoint(2025, time.March, 1)}
	_, err := newStore(t).PunchesInRange(context.Background(), "e1", period)
	assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
}

func TestHolidays_RangeIncludesGlobalAndRecurring(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{ID: "h1", Date: generic.NewTimePoint(2025, time.April, 21), Name: "Tiradentes"}))
	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{ID: "h2", CompanyID: "acme", Date: generic.NewTimePoint(2025, time.April, 10), Name: "Company day"}))
	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{ID: "h3", CompanyID: "other", Date: generic.NewTimePoint(2025, time.April, 11), Name: "Other company"}))
	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{ID: "h4", Date: generic.NewTimePoint(2020, time.April, 1), Name: "Recurring", Recurring: true}))
	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{ID: "h5", Date: generic.NewTimePoint(2025, time.May, 1), Name: "Dia do Trabalho"}))

	got, err := store.HolidaysInRange(ctx, "acme", generic.MonthPeriod(2025, time.April))
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "2025-04-01", got[0].Date.Key())
	assert.Equal(t, "Recurring", got[0].Name)
	assert.Equal(t, "2025-04-10", got[1].Date.Key())
	assert.Equal(t, "2025-04-21", got[2].Date.Key())

	cal := generic.NewHolidaySet(got...)
	assert.True(t, cal.IsHoliday(generic.NewTimePoint(2025, time.April, 21)))
	assert.False(t, cal.IsHoliday(generic.NewTimePoint(2025, time.April, 11)))
}

func TestHolidays_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	date := generic.NewTimePoint(2025, time.December, 25)

	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{ID: "xmas", Date: date, Name: "Natal"}))
	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{ID: "xmas-again", Date: date, Name: "Natal", Recurring: true}))

	all, err := store.GetAllHolidays(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "xmas", all[0].ID)
	assert.True(t, all[0].Recurring)

	require.NoError(t, store.DeleteHoliday(ctx, "xmas"))
	assert.ErrorIs(t, store.DeleteHoliday(ctx, "xmas"), generic.ErrHolidayNotFound)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	saveEmployee(t, store, "e1", "10")
	require.NoError(t, store.SaveHoliday(ctx, generic.Holiday{ID: "h", Date: generic.NewTimePoint(2025, time.January, 1), Name: "Ano Novo"}))

	require.NoError(t, store.Reset(ctx))

	list, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	hs, err := store.GetAllHolidays(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, hs)
}
