/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with the
	reference cases of the CLT rules: a weekday with overtime, a night
	shift crossing midnight, a holiday, a Saturday and a split shift.

AVAILABLE SCENARIOS:

	weekday-overtime: 08:00-17:00 on a Monday, 8h normal + 1h at 50%
	night-shift:      22:00-05:00, 7 real night hours = 8 legal hours
	holiday:          08:00-14:00 on Tiradentes, everything at 100%
	saturday:         07:00-13:00, 4h quota + 2h at 50%
	split-shift:      08:00-12:00 and 13:00-18:00 on one day
	team-month:       All of the above, one employee each, one company

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Seed the national holidays of the scenario year
 3. Create employees with an hourly rate
 4. Import raw punches (zone-less ISO, read in the rules' location)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "night-shift"}

	GET /api/employees/emp-002/bulletin?from=2025-03-01&to=2025-03-31

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: importPunches, GetBulletin
  - calendar/brazil.go: National holidays
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/hours"
)

// ScenarioCompany is the company every scenario employee belongs to.
const ScenarioCompany = "acme"

// scenarioYear is the year all scenario punches fall in.
const scenarioYear = 2025

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "weekday-overtime",
		Name:        "Weekday Overtime",
		Description: "Monday 08:00-17:00: 8h normal, 1h overtime at 50%",
		Category:    "day",
	},
	{
		ID:          "night-shift",
		Name:        "Night Shift",
		Description: "Tuesday 22:00 to Wednesday 05:00: 7 real hours count as 8 legal night hours",
		Category:    "night",
	},
	{
		ID:          "holiday",
		Name:        "Holiday Work",
		Description: "Tiradentes (Apr 21) 08:00-14:00: all 6 hours at 100%",
		Category:    "holiday",
	},
	{
		ID:          "saturday",
		Name:        "Saturday Shift",
		Description: "Saturday 07:00-13:00: 4h quota, 2h overtime at 50%",
		Category:    "day",
	},
	{
		ID:          "split-shift",
		Name:        "Split Shift",
		Description: "Monday 08:00-12:00 and 13:00-18:00: quota carried across both intervals",
		Category:    "day",
	},
	{
		ID:          "team-month",
		Name:        "Team Month",
		Description: "All reference cases, one employee each, for a monthly batch bulletin",
		Category:    "batch",
	},
}

// scenarioShift is one punch in zone-less ISO form.
type scenarioShift struct {
	id, entry, exit string
}

type scenarioEmployee struct {
	employee generic.Employee
	shifts   []scenarioShift
}

var scenarioEmployees = map[string]scenarioEmployee{
	"weekday-overtime": {
		employee: generic.Employee{ID: "emp-001", Name: "Ana Souza", Position: "Analista"},
		shifts:   []scenarioShift{{"p-001", "2025-03-10T08:00:00", "2025-03-10T17:00:00"}},
	},
	"night-shift": {
		employee: generic.Employee{ID: "emp-002", Name: "Bruno Lima", Position: "Vigilante"},
		shifts:   []scenarioShift{{"p-002", "2025-03-11T22:00:00", "2025-03-12T05:00:00"}},
	},
	"holiday": {
		employee: generic.Employee{ID: "emp-003", Name: "Carla Dias", Position: "Enfermeira"},
		shifts:   []scenarioShift{{"p-003", "2025-04-21T08:00:00", "2025-04-21T14:00:00"}},
	},
	"saturday": {
		employee: generic.Employee{ID: "emp-004", Name: "Diego Alves", Position: "Vendedor"},
		shifts:   []scenarioShift{{"p-004", "2025-03-15T07:00:00", "2025-03-15T13:00:00"}},
	},
	"split-shift": {
		employee: generic.Employee{ID: "emp-005", Name: "Elisa Rocha", Position: "Recepcionista"},
		shifts: []scenarioShift{
			{"p-005", "2025-03-10T08:00:00", "2025-03-10T12:00:00"},
			{"p-006", "2025-03-10T13:00:00", "2025-03-10T18:00:00"},
		},
	},
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenario()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          current,
		Name:        current,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario resets the database and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if !knownScenario(req.ScenarioID) {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")

	var err error
	if req.ScenarioID == "team-month" {
		err = h.loadTeamMonthScenario(ctx)
	} else {
		err = h.loadSingleScenario(ctx, req.ScenarioID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.setScenario(req.ScenarioID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.setScenario("")

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func knownScenario(id string) bool {
	for _, s := range scenarios {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (h *Handler) scenario() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSingleScenario(ctx context.Context, id string) error {
	if err := h.seedNationalHolidays(ctx); err != nil {
		return err
	}
	return h.seedEmployee(ctx, scenarioEmployees[id])
}

func (h *Handler) loadTeamMonthScenario(ctx context.Context) error {
	if err := h.seedNationalHolidays(ctx); err != nil {
		return err
	}
	for _, s := range scenarios {
		se, ok := scenarioEmployees[s.ID]
		if !ok {
			continue
		}
		if err := h.seedEmployee(ctx, se); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) seedNationalHolidays(ctx context.Context) error {
	for _, hol := range (calendar.Brazil{}).Holidays(scenarioYear) {
		hol.ID = fmt.Sprintf("br-%s-%s", ScenarioCompany, hol.Date.Key())
		hol.CompanyID = ScenarioCompany
		if err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return fmt.Errorf("seeding holiday %s: %w", hol.Name, err)
		}
	}
	return nil
}

func (h *Handler) seedEmployee(ctx context.Context, se scenarioEmployee) error {
	emp := se.employee
	emp.CompanyID = ScenarioCompany
	emp.HourlyRate = decimal.RequireFromString("25.00")
	emp.CreatedAt = time.Now()
	if err := h.Store.SaveEmployee(ctx, emp); err != nil {
		return fmt.Errorf("creating employee %s: %w", emp.ID, err)
	}

	raws := make([]hours.RawPunch, 0, len(se.shifts))
	for _, s := range se.shifts {
		raws = append(raws, hours.RawPunch{
			ID:    generic.PunchID(s.id),
			Entry: hours.ISOTimestamp(s.entry),
			Exit:  hours.ISOTimestamp(s.exit),
		})
	}

	resp, err := h.importPunches(ctx, emp.ID, "scenario", raws)
	if err != nil {
		return fmt.Errorf("importing punches for %s: %w", emp.ID, err)
	}
	if len(resp.Skipped) > 0 {
		return fmt.Errorf("scenario punches for %s rejected: %s", emp.ID, resp.SkippedMessage)
	}
	return nil
}
