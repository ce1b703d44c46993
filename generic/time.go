package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - Calendar date (or hour) on the UTC wall clock
// =============================================================================

// TimePoint is a calendar date, optionally refined to the hour.
// The wall-clock fields are kept in UTC so that two TimePoints built from the
// same calendar date compare equal regardless of the zone they came from.
type TimePoint struct {
	Time        time.Time
	Granularity Granularity
}

type Granularity int

const (
	GranularityDay Granularity = iota
	GranularityHour
	GranularityMinute
)

const dateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Granularity: GranularityDay}
}

func NewTimePointWithHour(year int, month time.Month, day, hour int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, hour, 0, 0, 0, time.UTC), Granularity: GranularityHour}
}

// DateOf returns the calendar date of t as read on t's own wall clock.
// Convert t with In() first to pick the zone the date is read in.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return TimePoint{Time: t, Granularity: GranularityDay}, nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	switch tp.Granularity {
	case GranularityDay:
		return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
	case GranularityHour:
		return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), tp.Time.Hour(), 0, 0, 0, time.UTC)
	default:
		return tp.Time
	}
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n), Granularity: tp.Granularity} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0), Granularity: tp.Granularity} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsSaturday() bool      { return tp.Weekday() == time.Saturday }
func (tp TimePoint) IsSunday() bool        { return tp.Weekday() == time.Sunday }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// Key is the YYYY-MM-DD form, used as a map key for per-date state.
func (tp TimePoint) Key() string { return tp.Time.Format(dateLayout) }

func (tp TimePoint) String() string {
	switch tp.Granularity {
	case GranularityDay:
		return tp.Time.Format(dateLayout)
	case GranularityHour:
		return tp.Time.Format("2006-01-02 15:00")
	default:
		return tp.Time.Format(time.RFC3339)
	}
}

// =============================================================================
// HOLIDAY CALENDAR - Injected capability, never a package-level singleton
// =============================================================================

// Holiday is a public or company holiday.
type Holiday struct {
	ID        string
	CompanyID string    // Empty string = applies to every company
	Date      TimePoint // The holiday date
	Name      string    // e.g., "Natal", "Tiradentes"
	Recurring bool      // true = same month/day every year
}

// HolidayCalendar answers whether a calendar date is a holiday.
// Implementations must be safe for concurrent reads; the hour engine calls
// IsHoliday once per hour slice.
type HolidayCalendar interface {
	IsHoliday(date TimePoint) bool
}

// DefaultHolidayCalendar is a no-op calendar for when holidays are disabled.
type DefaultHolidayCalendar struct{}

func (DefaultHolidayCalendar) IsHoliday(TimePoint) bool { return false }

// HolidaySet is an in-memory calendar built from a list of holidays.
// Build it once per calculation run; it is read-only afterwards.
type HolidaySet struct {
	dates     map[string]Holiday
	recurring map[string]Holiday // keyed by MM-DD
}

// NewHolidaySet builds a calendar from the given holidays.
func NewHolidaySet(holidays ...Holiday) *HolidaySet {
	s := &HolidaySet{
		dates:     make(map[string]Holiday),
		recurring: make(map[string]Holiday),
	}
	for _, h := range holidays {
		s.Add(h)
	}
	return s
}

// Add registers a holiday. Not safe to call concurrently with IsHoliday.
func (s *HolidaySet) Add(h Holiday) {
	if h.Recurring {
		s.recurring[h.Date.Time.Format("01-02")] = h
		return
	}
	s.dates[h.Date.Key()] = h
}

func (s *HolidaySet) IsHoliday(date TimePoint) bool {
	_, ok := s.Lookup(date)
	return ok
}

// Lookup returns the holiday falling on date, if any.
func (s *HolidaySet) Lookup(date TimePoint) (Holiday, bool) {
	if h, ok := s.dates[date.Key()]; ok {
		return h, true
	}
	h, ok := s.recurring[date.Time.Format("01-02")]
	return h, ok
}

// Len returns the number of registered holidays.
func (s *HolidaySet) Len() int { return len(s.dates) + len(s.recurring) }

// CalendarChain reports a holiday when any of its calendars does.
// Typical use: national rules chained with company-specific dates.
type CalendarChain []HolidayCalendar

func (c CalendarChain) IsHoliday(date TimePoint) bool {
	for _, cal := range c {
		if cal != nil && cal.IsHoliday(date) {
			return true
		}
	}
	return false
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the number of calendar days from -> to.
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t, Granularity: GranularityDay}
}
