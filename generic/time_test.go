package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
)

func TestTimePoint_DateOfIgnoresZoneOfOrigin(t *testing.T) {
	// GIVEN: 23:30 in Sao Paulo, which is already the next day in UTC
	sp, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	local := time.Date(2025, time.March, 10, 23, 30, 0, 0, sp)

	// THEN: The date is read on the wall clock of the value passed in
	assert.Equal(t, "2025-03-10", generic.DateOf(local).Key())
	assert.Equal(t, "2025-03-11", generic.DateOf(local.UTC()).Key())
	assert.True(t, generic.DateOf(local).Equal(generic.NewTimePoint(2025, time.March, 10)))
}

func TestTimePoint_Comparisons(t *testing.T) {
	a := generic.NewTimePoint(2025, time.March, 10)
	b := a.AddDays(1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, b.AfterOrEqual(a))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(generic.NewTimePointWithHour(2025, time.March, 10, 15)))

	assert.Equal(t, time.Tuesday, b.Weekday())
	assert.True(t, generic.NewTimePoint(2025, time.March, 15).IsSaturday())
	assert.True(t, generic.NewTimePoint(2025, time.March, 16).IsSunday())
	assert.Equal(t, 1, generic.DaysBetween(a, b))
	assert.Equal(t, "2025-04-10", a.AddMonths(1).Key())
}

func TestTimePoint_String(t *testing.T) {
	assert.Equal(t, "2025-03-10", generic.NewTimePoint(2025, time.March, 10).String())
	assert.Equal(t, "2025-03-10 15:00", generic.NewTimePointWithHour(2025, time.March, 10, 15).String())
}

func TestParseDate(t *testing.T) {
	tp, err := generic.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", tp.Key())

	for _, bad := range []string{"", "2025-02-30", "10/03/2025", "2025-3-1"} {
		_, err := generic.ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, "2024-02-29", generic.EndOfMonth(2024, time.February).Key())
	assert.Equal(t, "2025-02-28", generic.EndOfMonth(2025, time.February).Key())
	assert.Equal(t, "2025-12-31", generic.EndOfMonth(2025, time.December).Key())
	assert.Equal(t, "2025-12-01", generic.StartOfMonth(2025, time.December).Key())
}

// =============================================================================
// HOLIDAY CALENDARS
// =============================================================================

func TestHolidaySet(t *testing.T) {
	// GIVEN: One dated holiday and one recurring holiday
	set := generic.NewHolidaySet(
		generic.Holiday{Date: generic.NewTimePoint(2025, time.March, 4), Name: "Carnaval"},
		generic.Holiday{Date: generic.NewTimePoint(2020, time.January, 25), Name: "Aniversario", Recurring: true},
	)

	// THEN: Dated holidays match their year only, recurring ones every year
	assert.True(t, set.IsHoliday(generic.NewTimePoint(2025, time.March, 4)))
	assert.False(t, set.IsHoliday(generic.NewTimePoint(2026, time.March, 4)))
	assert.True(t, set.IsHoliday(generic.NewTimePoint(2031, time.January, 25)))
	assert.False(t, set.IsHoliday(generic.NewTimePoint(2031, time.January, 26)))
	assert.Equal(t, 2, set.Len())

	h, ok := set.Lookup(generic.NewTimePoint(2025, time.January, 25))
	require.True(t, ok)
	assert.Equal(t, "Aniversario", h.Name)
}

func TestCalendarChain(t *testing.T) {
	national := generic.NewHolidaySet(generic.Holiday{Date: generic.NewTimePoint(2025, time.December, 25)})
	company := generic.NewHolidaySet(generic.Holiday{Date: generic.NewTimePoint(2025, time.December, 24)})
	chain := generic.CalendarChain{nil, national, company}

	assert.True(t, chain.IsHoliday(generic.NewTimePoint(2025, time.December, 24)))
	assert.True(t, chain.IsHoliday(generic.NewTimePoint(2025, time.December, 25)))
	assert.False(t, chain.IsHoliday(generic.NewTimePoint(2025, time.December, 26)))
	assert.False(t, generic.DefaultHolidayCalendar{}.IsHoliday(generic.NewTimePoint(2025, time.December, 25)))
}
