/*
Package hours implements the hour classification engine.

PURPOSE:
  Converts raw clock-in/clock-out pairs for a worker into legally categorized
  hour buckets following CLT conventions: normal hours, night premium,
  50%/100% overtime (day and night), and the fictitious-hour adjustment that
  comes from the reduced night hour.

PIPELINE:
  RawPunch --Normalize--> Punch --ResolveWorkdays--> WorkdayGroup
           --Engine.Bucket--> BucketedResult --Value--> Valuation

  1. normalize.go: Heterogeneous timestamps -> validated Punch, or InvalidPunchError
  2. grouping.go:  Early-morning punches join the previous night shift
  3. engine.go:    Hour-by-hour walk, per-date quota accumulator
  4. valuation.go: Hourly rate x legal multipliers

KEY RULES (defaults, see rules.go):
  - Night window 22:00-05:00, one legal night hour = 52.5 real minutes
  - Daily quota 8h Mon-Fri, 4h Saturday, 0h Sunday or holiday
  - Overtime on Sunday/holiday is 100%, otherwise 50%

PURITY:
  Nothing here performs I/O or holds package state. A calculation run owns
  its Accumulator; independent runs can execute on separate goroutines
  (see batch.go).

SEE ALSO:
  - generic/time.go: HolidayCalendar capability
  - factory/rules.go: Rules from JSON/TOML documents
*/
package hours

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// PUNCH / WORK INTERVAL
// =============================================================================

// Punch is a validated attendance pair. Exit is always after Entry.
type Punch struct {
	ID         generic.PunchID
	EmployeeID generic.EmployeeID
	Entry      time.Time
	Exit       time.Time
}

// Duration returns the worked time of the punch.
func (p Punch) Duration() time.Duration { return p.Exit.Sub(p.Entry) }

// WorkInterval is a punch once it belongs to a workday.
type WorkInterval struct {
	PunchID generic.PunchID
	Entry   time.Time
	Exit    time.Time
}

// WorkdayGroup is every interval billed under one anchor date.
// A night shift that runs past midnight stays anchored on the day it started.
type WorkdayGroup struct {
	EmployeeID generic.EmployeeID
	AnchorDate generic.TimePoint
	Intervals  []WorkInterval

	// HadNightEntry is set once any interval of the group starts at or after
	// Rules.OvernightEntryHour. It decides whether the next day's early
	// punches attach here.
	HadNightEntry bool
}

// =============================================================================
// BUCKETED RESULT - Decimal hours per category
// =============================================================================

// BucketedResult holds the classified hours of one workday (or a sum of them).
// Night figures are already scaled by Rules.NightFactor except RawNightHours.
type BucketedResult struct {
	NightHours        float64 `json:"night_hours"`
	RawNightHours     float64 `json:"raw_night_hours"`
	DayHours          float64 `json:"day_hours"`
	TotalHours        float64 `json:"total_hours"`
	FictitiousHours   float64 `json:"fictitious_hours"`
	NormalHours       float64 `json:"normal_hours"`
	NightPremiumHours float64 `json:"night_premium_hours"`
	Extra50Day        float64 `json:"extra50_day"`
	Extra50Night      float64 `json:"extra50_night"`
	Extra100Day       float64 `json:"extra100_day"`
	Extra100Night     float64 `json:"extra100_night"`
}

// Extra50 returns day plus night 50% overtime.
func (r BucketedResult) Extra50() float64 { return r.Extra50Day + r.Extra50Night }

// Extra100 returns day plus night 100% overtime.
func (r BucketedResult) Extra100() float64 { return r.Extra100Day + r.Extra100Night }

// Add sums two results field by field.
func (r BucketedResult) Add(o BucketedResult) BucketedResult {
	return BucketedResult{
		NightHours:        r.NightHours + o.NightHours,
		RawNightHours:     r.RawNightHours + o.RawNightHours,
		DayHours:          r.DayHours + o.DayHours,
		TotalHours:        r.TotalHours + o.TotalHours,
		FictitiousHours:   r.FictitiousHours + o.FictitiousHours,
		NormalHours:       r.NormalHours + o.NormalHours,
		NightPremiumHours: r.NightPremiumHours + o.NightPremiumHours,
		Extra50Day:        r.Extra50Day + o.Extra50Day,
		Extra50Night:      r.Extra50Night + o.Extra50Night,
		Extra100Day:       r.Extra100Day + o.Extra100Day,
		Extra100Night:     r.Extra100Night + o.Extra100Night,
	}
}

// =============================================================================
// RUN - One employee over one period
// =============================================================================

// GroupResult pairs a workday with its hours and money.
type GroupResult struct {
	Group WorkdayGroup
	Hours BucketedResult
	Value Valuation
}

// Run is the outcome of a calculation for one employee-period.
// Skipped lists the punches that were rejected by normalization.
type Run struct {
	EmployeeID generic.EmployeeID
	HourlyRate decimal.Decimal
	Groups     []GroupResult
	Total      BucketedResult
	TotalValue Valuation
	Skipped    []*InvalidPunchError
}

// Within keeps the workdays anchored inside period and re-sums the totals.
// Callers load punches one day beyond each end of the period so that night
// shifts crossing the boundary are grouped and bucketed as usual.
func (r Run) Within(period generic.Period) Run {
	out := Run{
		EmployeeID: r.EmployeeID,
		HourlyRate: r.HourlyRate,
		Groups:     make([]GroupResult, 0, len(r.Groups)),
		Skipped:    r.Skipped,
	}
	for _, g := range r.Groups {
		if !period.Contains(g.Group.AnchorDate) {
			continue
		}
		out.Groups = append(out.Groups, g)
		out.Total = out.Total.Add(g.Hours)
		out.TotalValue = out.TotalValue.Add(g.Value)
	}
	return out
}
