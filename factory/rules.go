/*
Package factory converts rules documents into hours.Rules.

PURPOSE:
  Payroll parameters change per collective agreement (different quotas,
  overtime multipliers, local time zone). The factory builds hours.Rules
  from a JSON or TOML document so those changes need no code.

DOCUMENT SCHEMA (JSON; TOML uses the same keys):
  {
    "id": "clt-sp",
    "name": "CLT - São Paulo",
    "timezone": "America/Sao_Paulo",
    "daily_quota": {"weekday": 8, "saturday": 4, "rest_day": 0},
    "night": {"start_hour": 22, "end_hour": 5, "hour_minutes": 52.5},
    "overnight": {"entry_hour": 18, "early_morning_hour": 12},
    "multipliers": {"extra50": 1.5, "extra100": 2.0}
  }

  Every field is optional; a missing field keeps the value of the
  factory's Base (hours.DefaultRules unless the caller supplies another,
  e.g. one carrying the TIMEZONE location). The night factor is written as the length of a legal
  night hour in minutes (52.5 -> factor 60/52.5).

USAGE:
  f := factory.NewRulesFactory()
  rules, err := f.ParseRules(jsonString)
  rules, err := f.ParseRulesTOML(data)
  rules, err := factory.LoadRulesFile("rules.toml")
  rules, err := factory.LoadRulesFileOver("rules.toml", base)

SEE ALSO:
  - hours/rules.go: Rules type, defaults and validation
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/hours"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// RulesJSON is the document form of hours.Rules.
type RulesJSON struct {
	ID          string           `json:"id,omitempty" toml:"id,omitempty"`
	Name        string           `json:"name,omitempty" toml:"name,omitempty"`
	Timezone    string           `json:"timezone,omitempty" toml:"timezone,omitempty"`
	DailyQuota  *DailyQuotaJSON  `json:"daily_quota,omitempty" toml:"daily_quota,omitempty"`
	Night       *NightJSON       `json:"night,omitempty" toml:"night,omitempty"`
	Overnight   *OvernightJSON   `json:"overnight,omitempty" toml:"overnight,omitempty"`
	Multipliers *MultipliersJSON `json:"multipliers,omitempty" toml:"multipliers,omitempty"`
}

// DailyQuotaJSON holds normal-hour thresholds per day kind.
type DailyQuotaJSON struct {
	Weekday  *float64 `json:"weekday,omitempty" toml:"weekday,omitempty"`
	Saturday *float64 `json:"saturday,omitempty" toml:"saturday,omitempty"`
	RestDay  *float64 `json:"rest_day,omitempty" toml:"rest_day,omitempty"` // Sundays and holidays
}

// NightJSON holds the night window and legal night-hour length.
type NightJSON struct {
	StartHour   *int     `json:"start_hour,omitempty" toml:"start_hour,omitempty"`
	EndHour     *int     `json:"end_hour,omitempty" toml:"end_hour,omitempty"`
	HourMinutes *float64 `json:"hour_minutes,omitempty" toml:"hour_minutes,omitempty"`
}

// OvernightJSON holds the workday grouping thresholds.
type OvernightJSON struct {
	EntryHour        *int `json:"entry_hour,omitempty" toml:"entry_hour,omitempty"`
	EarlyMorningHour *int `json:"early_morning_hour,omitempty" toml:"early_morning_hour,omitempty"`
}

// MultipliersJSON holds overtime pay multipliers.
type MultipliersJSON struct {
	Extra50  *float64 `json:"extra50,omitempty" toml:"extra50,omitempty"`
	Extra100 *float64 `json:"extra100,omitempty" toml:"extra100,omitempty"`
}

// =============================================================================
// RULES FACTORY
// =============================================================================

// RulesFactory converts rules documents to hours.Rules.
type RulesFactory struct {
	// Base supplies every field a document leaves out.
	Base hours.Rules
}

// NewRulesFactory creates a rules factory over the CLT defaults.
func NewRulesFactory() *RulesFactory {
	return NewRulesFactoryOver(hours.DefaultRules())
}

// NewRulesFactoryOver creates a rules factory over base.
func NewRulesFactoryOver(base hours.Rules) *RulesFactory {
	return &RulesFactory{Base: base}
}

// ParseRules parses a JSON document.
func (f *RulesFactory) ParseRules(jsonStr string) (hours.Rules, error) {
	var rj RulesJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return hours.Rules{}, fmt.Errorf("failed to parse rules JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// ParseRulesTOML parses a TOML document.
func (f *RulesFactory) ParseRulesTOML(data []byte) (hours.Rules, error) {
	var rj RulesJSON
	if err := toml.Unmarshal(data, &rj); err != nil {
		return hours.Rules{}, fmt.Errorf("failed to parse rules TOML: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON overlays the document on the factory's Base and validates the result.
func (f *RulesFactory) FromJSON(rj RulesJSON) (hours.Rules, error) {
	rules := f.Base

	if rj.Timezone != "" {
		loc, err := time.LoadLocation(rj.Timezone)
		if err != nil {
			return hours.Rules{}, &hours.RulesError{Field: "timezone", Reason: err.Error()}
		}
		rules.Location = loc
	}

	if q := rj.DailyQuota; q != nil {
		setFloat(&rules.DailyQuotaWeekday, q.Weekday)
		setFloat(&rules.DailyQuotaSaturday, q.Saturday)
		setFloat(&rules.DailyQuotaRestDay, q.RestDay)
	}

	if n := rj.Night; n != nil {
		setInt(&rules.NightStartHour, n.StartHour)
		setInt(&rules.NightEndHour, n.EndHour)
		if n.HourMinutes != nil {
			if *n.HourMinutes <= 0 || *n.HourMinutes > 60 {
				return hours.Rules{}, &hours.RulesError{Field: "night.hour_minutes", Reason: "must be within (0, 60]"}
			}
			rules.NightFactor = 60 / *n.HourMinutes
		}
	}

	if o := rj.Overnight; o != nil {
		setInt(&rules.OvernightEntryHour, o.EntryHour)
		setInt(&rules.EarlyMorningHour, o.EarlyMorningHour)
	}

	if m := rj.Multipliers; m != nil {
		if m.Extra50 != nil {
			rules.Extra50Multiplier = decimal.NewFromFloat(*m.Extra50)
		}
		if m.Extra100 != nil {
			rules.Extra100Multiplier = decimal.NewFromFloat(*m.Extra100)
		}
	}

	if err := rules.Validate(); err != nil {
		return hours.Rules{}, err
	}
	return rules, nil
}

// ToJSON converts rules back to their document form.
func (f *RulesFactory) ToJSON(rules hours.Rules) RulesJSON {
	extra50, _ := rules.Extra50Multiplier.Float64()
	extra100, _ := rules.Extra100Multiplier.Float64()
	hourMinutes := 60 / rules.NightFactor

	rj := RulesJSON{
		DailyQuota: &DailyQuotaJSON{
			Weekday:  &rules.DailyQuotaWeekday,
			Saturday: &rules.DailyQuotaSaturday,
			RestDay:  &rules.DailyQuotaRestDay,
		},
		Night: &NightJSON{
			StartHour:   &rules.NightStartHour,
			EndHour:     &rules.NightEndHour,
			HourMinutes: &hourMinutes,
		},
		Overnight: &OvernightJSON{
			EntryHour:        &rules.OvernightEntryHour,
			EarlyMorningHour: &rules.EarlyMorningHour,
		},
		Multipliers: &MultipliersJSON{Extra50: &extra50, Extra100: &extra100},
	}
	if rules.Location != nil {
		rj.Timezone = rules.Location.String()
	}
	return rj
}

// LoadRulesFile reads a rules document over the CLT defaults, choosing the
// format by extension (.toml, otherwise JSON).
func LoadRulesFile(path string) (hours.Rules, error) {
	return LoadRulesFileOver(path, hours.DefaultRules())
}

// LoadRulesFileOver reads a rules document over base. Fields the document
// omits, the time zone included, keep base's values.
func LoadRulesFileOver(path string, base hours.Rules) (hours.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return hours.Rules{}, fmt.Errorf("reading rules file: %w", err)
	}

	f := NewRulesFactoryOver(base)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return f.ParseRulesTOML(data)
	}
	return f.ParseRules(string(data))
}

// =============================================================================
// PRESETS
// =============================================================================

// CLTRulesJSON returns the CLT document for a time zone.
func CLTRulesJSON(timezone string) string {
	return fmt.Sprintf(`{
		"id": "clt",
		"name": "CLT",
		"timezone": %q,
		"daily_quota": {"weekday": 8, "saturday": 4, "rest_day": 0},
		"night": {"start_hour": 22, "end_hour": 5, "hour_minutes": 52.5},
		"overnight": {"entry_hour": 18, "early_morning_hour": 12},
		"multipliers": {"extra50": 1.5, "extra100": 2.0}
	}`, timezone)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
