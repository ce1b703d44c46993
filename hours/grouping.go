package hours

import (
	"sort"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// OVERNIGHT GROUPING RESOLVER
// =============================================================================

// ResolveWorkdays groups one employee's punches into workdays.
//
// A punch normally belongs to the workday of its own entry date. A punch
// entering before Rules.EarlyMorningHour instead joins the immediately
// preceding workday when that workday is exactly one calendar day earlier
// and one of its intervals entered at or after Rules.OvernightEntryHour:
// the punch is the tail of a night shift, not a new short shift.
//
// The night flag is sticky for the whole workday rather than read from its
// last interval only, so a second early-morning tail after an attached one
// still attaches.
//
// Only the immediately preceding workday is considered. Any other case,
// including multi-day gaps, starts a new workday on the punch's own date.
// This fallback is the policy, not an error.
func ResolveWorkdays(employeeID generic.EmployeeID, punches []Punch, rules Rules) []WorkdayGroup {
	sorted := make([]Punch, len(punches))
	copy(sorted, punches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Entry.Before(sorted[j].Entry) })

	loc := rules.location()
	var groups []WorkdayGroup

	for _, p := range sorted {
		entry := p.Entry.In(loc)
		natural := generic.DateOf(entry)
		interval := WorkInterval{PunchID: p.ID, Entry: p.Entry, Exit: p.Exit}
		nightEntry := entry.Hour() >= rules.OvernightEntryHour

		if n := len(groups); n > 0 {
			current := &groups[n-1]

			if entry.Hour() < rules.EarlyMorningHour &&
				current.HadNightEntry &&
				generic.DaysBetween(current.AnchorDate, natural) == 1 {
				current.Intervals = append(current.Intervals, interval)
				continue
			}

			if current.AnchorDate.Equal(natural) {
				current.Intervals = append(current.Intervals, interval)
				current.HadNightEntry = current.HadNightEntry || nightEntry
				continue
			}
		}

		groups = append(groups, WorkdayGroup{
			EmployeeID:    employeeID,
			AnchorDate:    natural,
			Intervals:     []WorkInterval{interval},
			HadNightEntry: nightEntry,
		})
	}

	return groups
}
