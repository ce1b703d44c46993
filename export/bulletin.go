// Package export renders calculation runs as payroll bulletins (CSV, JSON).
package export

import (
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/hours"
)

// TotalLabel marks the per-employee total row in place of a date.
const TotalLabel = "TOTAL"

// BulletinRow is one workday (or the period total) of one employee.
// Hour fields are HH:MM; money fields carry two decimals.
type BulletinRow struct {
	EmployeeID        string `json:"employee_id"`
	Date              string `json:"date"`
	Punches           int    `json:"punches"`
	DayHours          string `json:"day_hours"`
	NightHours        string `json:"night_hours"`
	FictitiousHours   string `json:"fictitious_hours"`
	TotalHours        string `json:"total_hours"`
	NormalHours       string `json:"normal_hours"`
	NightPremiumHours string `json:"night_premium_hours"`
	Extra50Day        string `json:"extra50_day"`
	Extra50Night      string `json:"extra50_night"`
	Extra100Day       string `json:"extra100_day"`
	Extra100Night     string `json:"extra100_night"`
	ValueNormal       string `json:"value_normal"`
	ValueExtra50      string `json:"value_extra50"`
	ValueExtra100     string `json:"value_extra100"`
	ValueTotal        string `json:"value_total"`
}

// Rows flattens runs into bulletin rows: one per workday, then a total row
// per employee.
func Rows(runs ...hours.Run) []BulletinRow {
	var rows []BulletinRow
	for _, run := range runs {
		punches := 0
		for _, g := range run.Groups {
			rows = append(rows, row(run.EmployeeID, g.Group.AnchorDate.Key(), len(g.Group.Intervals), g.Hours, g.Value))
			punches += len(g.Group.Intervals)
		}
		rows = append(rows, row(run.EmployeeID, TotalLabel, punches, run.Total, run.TotalValue))
	}
	return rows
}

func row(employeeID generic.EmployeeID, date string, punches int, h hours.BucketedResult, v hours.Valuation) BulletinRow {
	return BulletinRow{
		EmployeeID:        string(employeeID),
		Date:              date,
		Punches:           punches,
		DayHours:          hours.FormatHours(h.DayHours),
		NightHours:        hours.FormatHours(h.NightHours),
		FictitiousHours:   hours.FormatHours(h.FictitiousHours),
		TotalHours:        hours.FormatHours(h.TotalHours),
		NormalHours:       hours.FormatHours(h.NormalHours),
		NightPremiumHours: hours.FormatHours(h.NightPremiumHours),
		Extra50Day:        hours.FormatHours(h.Extra50Day),
		Extra50Night:      hours.FormatHours(h.Extra50Night),
		Extra100Day:       hours.FormatHours(h.Extra100Day),
		Extra100Night:     hours.FormatHours(h.Extra100Night),
		ValueNormal:       v.Normal.StringFixed(2),
		ValueExtra50:      v.Extra50.StringFixed(2),
		ValueExtra100:     v.Extra100.StringFixed(2),
		ValueTotal:        v.Total.StringFixed(2),
	}
}
