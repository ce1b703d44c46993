/*
Package calendar provides holiday data sources for the hours engine.

BRAZIL:
  National holidays are either fixed month/day dates or offsets from Easter
  Sunday (Gregorian computus). Carnival and Corpus Christi are "pontos
  facultativos": observed by most employers but not national law, so they
  are only included when IncludeOptional is set.

ICS:
  FetchICS imports company calendars published as iCalendar feeds or files.
  Every VEVENT becomes one generic.Holiday per covered date.

Both produce plain generic.Holiday values; persistence is the store's job.
*/
package calendar

import (
	"sort"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// Brazil is the national holiday calendar. Optional holidays and any
// company-specific calendar are layered on top.
type Brazil struct {
	IncludeOptional bool
	CompanyHolidays generic.HolidayCalendar
}

var _ generic.HolidayCalendar = Brazil{}

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
	since int // first year observed, 0 = always
}

var fixedHolidays = []fixedHoliday{
	{time.January, 1, "Confraternização Universal", 0},
	{time.April, 21, "Tiradentes", 0},
	{time.May, 1, "Dia do Trabalho", 0},
	{time.September, 7, "Independência do Brasil", 0},
	{time.October, 12, "Nossa Senhora Aparecida", 0},
	{time.November, 2, "Finados", 0},
	{time.November, 15, "Proclamação da República", 0},
	{time.November, 20, "Dia Nacional de Zumbi e da Consciência Negra", 2024},
	{time.December, 25, "Natal", 0},
}

type easterHoliday struct {
	offset   int
	name     string
	optional bool
}

var easterHolidays = []easterHoliday{
	{-48, "Carnaval (segunda-feira)", true},
	{-47, "Carnaval (terça-feira)", true},
	{-2, "Sexta-feira Santa", false},
	{60, "Corpus Christi", true},
}

// IsHoliday reports whether date is a national holiday or a company holiday.
func (b Brazil) IsHoliday(date generic.TimePoint) bool {
	if b.CompanyHolidays != nil && b.CompanyHolidays.IsHoliday(date) {
		return true
	}
	for _, h := range b.Holidays(date.Year()) {
		if h.Date.Equal(date) {
			return true
		}
	}
	return false
}

// Holidays lists the holidays of one year in date order.
func (b Brazil) Holidays(year int) []generic.Holiday {
	easter := EasterSunday(year)
	var out []generic.Holiday

	for _, f := range fixedHolidays {
		if f.since > year {
			continue
		}
		out = append(out, generic.Holiday{Date: generic.NewTimePoint(year, f.month, f.day), Name: f.name})
	}
	for _, e := range easterHolidays {
		if e.optional && !b.IncludeOptional {
			continue
		}
		out = append(out, generic.Holiday{Date: easter.AddDays(e.offset), Name: e.name})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// EasterSunday returns Easter Sunday of the Gregorian calendar
// (anonymous Gregorian algorithm, Meeus/Jones/Butcher).
func EasterSunday(year int) generic.TimePoint {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return generic.NewTimePoint(year, time.Month(month), day)
}
