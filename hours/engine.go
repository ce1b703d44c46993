/*
engine.go - Hourly bucketing engine

PURPOSE:
  Walks every work interval in hour-aligned slices and classifies each slice
  as day or night, normal or overtime, 50% or 100%.

ALGORITHM (per interval):
  cursor := entry
  while cursor < exit:
      sliceEnd  = min(next hour boundary after cursor, exit)
      date      = calendar date of cursor
      night     = Rules.IsNightHour(hour(cursor))
      restDay   = Sunday(date) || IsHoliday(date)        -> 100% overtime
      remaining = max(0, DailyQuota(date) - accumulated[date])
      normal    = min(duration, remaining); overtime = duration - normal
      accumulated[date] += duration

  Each slice re-evaluates its own date, so a shift crossing midnight into a
  holiday or Sunday switches category exactly at 00:00.

NIGHT SCALING:
  Raw night hours are multiplied by Rules.NightFactor (60/52.5) in NightHours,
  NightPremiumHours, Extra50Night, Extra100Night, TotalHours and NormalHours.
  FictitiousHours = raw night x (factor - 1). Day hours are never scaled.

ACCUMULATOR:
  The per-date running total is an explicit Accumulator owned by one
  calculation run. It spans every workday of the run: a night shift that
  spills into Tuesday consumes Tuesday's quota before Tuesday's own shift.

SEE ALSO:
  - rules.go: Quotas, night window, factor
  - grouping.go: Produces the WorkdayGroups walked here
*/
package hours

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// ACCUMULATOR - Hours already attributed per calendar date
// =============================================================================

// Accumulator tracks raw hours attributed to each calendar date during one
// calculation run. Not safe for concurrent use; create one per run.
type Accumulator struct {
	worked map[string]float64
}

func NewAccumulator() *Accumulator {
	return &Accumulator{worked: make(map[string]float64)}
}

// Worked returns the hours already attributed to date.
func (a *Accumulator) Worked(date generic.TimePoint) float64 {
	return a.worked[date.Key()]
}

func (a *Accumulator) add(date generic.TimePoint, h float64) {
	a.worked[date.Key()] += h
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine classifies hours. It is immutable after construction and may be
// shared by goroutines; each run gets its own Accumulator.
type Engine struct {
	Rules    Rules
	Calendar generic.HolidayCalendar
}

// NewEngine validates rules and returns an engine. A nil calendar means no holidays.
func NewEngine(rules Rules, cal generic.HolidayCalendar) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if cal == nil {
		cal = generic.DefaultHolidayCalendar{}
	}
	return &Engine{Rules: rules, Calendar: cal}, nil
}

// WithCalendar returns a copy of the engine using another holiday calendar.
func (e *Engine) WithCalendar(cal generic.HolidayCalendar) *Engine {
	if cal == nil {
		cal = generic.DefaultHolidayCalendar{}
	}
	return &Engine{Rules: e.Rules, Calendar: cal}
}

// tally holds raw (unscaled) hours while walking slices.
type tally struct {
	day, night             float64
	dayNormal, nightNormal float64
	day50, day100          float64
	night50, night100      float64
}

// Bucket classifies one workday, advancing acc.
func (e *Engine) Bucket(acc *Accumulator, group WorkdayGroup) BucketedResult {
	var t tally
	for _, iv := range group.Intervals {
		e.walk(acc, iv, &t)
	}
	return t.result(e.Rules.NightFactor)
}

func (e *Engine) walk(acc *Accumulator, iv WorkInterval, t *tally) {
	loc := e.Rules.location()
	cursor := iv.Entry.In(loc)
	exit := iv.Exit.In(loc)

	for cursor.Before(exit) {
		sliceEnd := nextHour(cursor)
		if !sliceEnd.After(cursor) {
			sliceEnd = cursor.Add(time.Hour)
		}
		if exit.Before(sliceEnd) {
			sliceEnd = exit
		}
		duration := sliceEnd.Sub(cursor).Hours()

		date := generic.DateOf(cursor)
		night := e.Rules.IsNightHour(cursor.Hour())
		restDay := e.Rules.IsRestDay(date, e.Calendar)

		remaining := math.Max(0, e.Rules.DailyQuota(date, e.Calendar)-acc.Worked(date))
		normal := math.Min(duration, remaining)
		overtime := duration - normal

		if night {
			t.night += duration
			t.nightNormal += normal
			if restDay {
				t.night100 += overtime
			} else {
				t.night50 += overtime
			}
		} else {
			t.day += duration
			t.dayNormal += normal
			if restDay {
				t.day100 += overtime
			} else {
				t.day50 += overtime
			}
		}

		acc.add(date, duration)
		cursor = sliceEnd
	}
}

// nextHour returns the first wall-clock hour boundary strictly after t.
// It is measured from the instant, so the hour repeated by a DST fall-back
// still advances.
func nextHour(t time.Time) time.Time {
	intoHour := time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
	return t.Add(time.Hour - intoHour)
}

func (t tally) result(factor float64) BucketedResult {
	return BucketedResult{
		NightHours:        t.night * factor,
		RawNightHours:     t.night,
		DayHours:          t.day,
		TotalHours:        t.day + t.night*factor,
		FictitiousHours:   t.night * (factor - 1),
		NormalHours:       t.dayNormal + t.nightNormal*factor,
		NightPremiumHours: t.nightNormal * factor,
		Extra50Day:        t.day50,
		Extra50Night:      t.night50 * factor,
		Extra100Day:       t.day100,
		Extra100Night:     t.night100 * factor,
	}
}

// =============================================================================
// CALCULATION RUN
// =============================================================================

// Calculate runs the full pipeline for one employee-period: normalize,
// group, bucket with a fresh accumulator, and value at hourlyRate.
func (e *Engine) Calculate(employeeID generic.EmployeeID, raws []RawPunch, hourlyRate decimal.Decimal) Run {
	punches, skipped := NormalizeAll(raws, e.Rules.location())
	run := e.CalculatePunches(employeeID, punches, hourlyRate)
	run.Skipped = skipped
	return run
}

// CalculatePunches runs grouping, bucketing and valuation over validated punches.
func (e *Engine) CalculatePunches(employeeID generic.EmployeeID, punches []Punch, hourlyRate decimal.Decimal) Run {
	groups := ResolveWorkdays(employeeID, punches, e.Rules)
	acc := NewAccumulator()

	run := Run{
		EmployeeID: employeeID,
		HourlyRate: hourlyRate,
		Groups:     make([]GroupResult, 0, len(groups)),
	}
	for _, g := range groups {
		h := e.Bucket(acc, g)
		v := Value(h, hourlyRate, e.Rules)
		run.Groups = append(run.Groups, GroupResult{Group: g, Hours: h, Value: v})
		run.Total = run.Total.Add(h)
		run.TotalValue = run.TotalValue.Add(v)
	}
	return run
}
