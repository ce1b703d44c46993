package generic

import "time"

// =============================================================================
// PERIOD - Date range a calculation run covers
// =============================================================================

// Period is an inclusive date range [Start, End].
// Payroll bulletins are computed for a period, usually one calendar month.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the full calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Validate rejects a period whose end falls before its start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// HolidaysIn returns the occurrences of h inside the period. A fixed holiday
// yields itself or nothing; a recurring one yields one dated copy per year.
func (p Period) HolidaysIn(h Holiday) []Holiday {
	if !h.Recurring {
		if p.Contains(h.Date) {
			return []Holiday{h}
		}
		return nil
	}
	var out []Holiday
	for year := p.Start.Year(); year <= p.End.Year(); year++ {
		date := NewTimePoint(year, h.Date.Month(), h.Date.Day())
		// Feb 29 on a non-leap year normalizes into March; skip it.
		if date.Month() != h.Date.Month() || !p.Contains(date) {
			continue
		}
		occ := h
		occ.Date = date
		out = append(out, occ)
	}
	return out
}
