package hours

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// RULES - Labor-law parameters of the engine
// =============================================================================

// NightHourMinutes is the length in real minutes of one legal night hour.
const NightHourMinutes = 52.5

// CLTNightFactor converts real night hours into legal night hours (60/52.5).
const CLTNightFactor = 60 / NightHourMinutes

// Rules parameterizes classification. DefaultRules returns the CLT values;
// factory/rules.go builds variants from configuration documents.
type Rules struct {
	// Normal-hour threshold per calendar date.
	DailyQuotaWeekday  float64
	DailyQuotaSaturday float64
	DailyQuotaRestDay  float64 // Sundays and holidays

	// A slice is night when its start hour is >= NightStartHour or < NightEndHour.
	NightStartHour int
	NightEndHour   int
	NightFactor    float64

	// Overnight grouping: a group whose interval started at or after
	// OvernightEntryHour absorbs next-day punches starting before EarlyMorningHour.
	OvernightEntryHour int
	EarlyMorningHour   int

	Extra50Multiplier  decimal.Decimal
	Extra100Multiplier decimal.Decimal

	// Location is the zone hours and calendar dates are read in.
	Location *time.Location
}

// DefaultRules returns the CLT parameters.
func DefaultRules() Rules {
	return Rules{
		DailyQuotaWeekday:  8,
		DailyQuotaSaturday: 4,
		DailyQuotaRestDay:  0,
		NightStartHour:     22,
		NightEndHour:       5,
		NightFactor:        CLTNightFactor,
		OvernightEntryHour: 18,
		EarlyMorningHour:   12,
		Extra50Multiplier:  decimal.NewFromFloat(1.5),
		Extra100Multiplier: decimal.NewFromInt(2),
		Location:           time.UTC,
	}
}

// Validate checks ranges. Every calculation entry point assumes valid rules.
func (r Rules) Validate() error {
	switch {
	case r.DailyQuotaWeekday < 0 || r.DailyQuotaWeekday > 24:
		return &RulesError{Field: "daily_quota.weekday", Reason: "must be within [0, 24]"}
	case r.DailyQuotaSaturday < 0 || r.DailyQuotaSaturday > 24:
		return &RulesError{Field: "daily_quota.saturday", Reason: "must be within [0, 24]"}
	case r.DailyQuotaRestDay < 0 || r.DailyQuotaRestDay > 24:
		return &RulesError{Field: "daily_quota.rest_day", Reason: "must be within [0, 24]"}
	case !validHour(r.NightStartHour):
		return &RulesError{Field: "night.start_hour", Reason: "must be within [0, 23]"}
	case !validHour(r.NightEndHour):
		return &RulesError{Field: "night.end_hour", Reason: "must be within [0, 23]"}
	case r.NightFactor < 1:
		return &RulesError{Field: "night.factor", Reason: "must be at least 1"}
	case !validHour(r.OvernightEntryHour):
		return &RulesError{Field: "overnight.entry_hour", Reason: "must be within [0, 23]"}
	case !validHour(r.EarlyMorningHour):
		return &RulesError{Field: "overnight.early_morning_hour", Reason: "must be within [0, 23]"}
	case !r.Extra50Multiplier.IsPositive():
		return &RulesError{Field: "multipliers.extra50", Reason: "must be positive"}
	case !r.Extra100Multiplier.IsPositive():
		return &RulesError{Field: "multipliers.extra100", Reason: "must be positive"}
	}
	return nil
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

// IsNightHour reports whether a slice starting at hour h is night work.
// The window may wrap midnight (22 -> 5) or not (0 -> 6).
func (r Rules) IsNightHour(h int) bool {
	if r.NightStartHour > r.NightEndHour {
		return h >= r.NightStartHour || h < r.NightEndHour
	}
	return h >= r.NightStartHour && h < r.NightEndHour
}

// IsRestDay reports whether work on date is paid at 100%: Sunday or holiday.
func (r Rules) IsRestDay(date generic.TimePoint, cal generic.HolidayCalendar) bool {
	return date.IsSunday() || (cal != nil && cal.IsHoliday(date))
}

// DailyQuota returns the normal-hour threshold for a calendar date.
func (r Rules) DailyQuota(date generic.TimePoint, cal generic.HolidayCalendar) float64 {
	switch {
	case r.IsRestDay(date, cal):
		return r.DailyQuotaRestDay
	case date.IsSaturday():
		return r.DailyQuotaSaturday
	default:
		return r.DailyQuotaWeekday
	}
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}
