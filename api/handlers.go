/*
handlers.go - HTTP API handlers for the payroll hour engine

PURPOSE:
  Exposes the hour classification engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to package hours.
  Punches are stored raw; every bulletin re-runs the whole pipeline.

ENDPOINTS:
  Calculation:
    POST   /api/calculate                  Stateless calculation, nothing stored
    POST   /api/bulletins                  Bulletins for several employees

  Employees:
    GET    /api/employees                  List all employees
    POST   /api/employees                  Create or update employee
    GET    /api/employees/{id}             Get employee details
    POST   /api/employees/{id}/punches     Import raw punches
    GET    /api/employees/{id}/bulletin    Bulletin for ?from=&to= (&format=csv|rows)

  Holidays:
    GET    /api/holidays                   List holidays
    POST   /api/holidays                   Create holiday
    DELETE /api/holidays/{id}              Delete holiday
    POST   /api/holidays/defaults          Seed Brazilian national holidays for a year
    POST   /api/holidays/import            Import an iCalendar file or URL

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Engine: Rules plus the national calendar, shared read-only
  - Logger: Degraded situations (missing holiday data, skipped punches)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate punch)
  - 500: Internal errors

  Invalid punches are never fatal: they are listed under "skipped" and the
  rest of the period is computed.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/hours"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence the handlers need: the generic stores plus the
// admin operations behind holiday listing and scenario loading.
// Implemented by store/sqlite.Store and generic/store.Memory.
type Store interface {
	generic.EmployeeStore
	generic.PunchStore
	generic.HolidayStore

	// GetAllHolidays returns every holiday visible to a company, unexpanded.
	GetAllHolidays(ctx context.Context, companyID string) ([]generic.Holiday, error)

	// Reset clears all data.
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  Store
	Engine *hours.Engine
	Logger *slog.Logger

	// CompanyID scopes holidays when a request does not name a company.
	CompanyID string

	// National layers the Brazilian national calendar under stored holidays.
	National        bool
	IncludeOptional bool

	// BatchLimit bounds concurrent employee-periods in POST /api/bulletins.
	BatchLimit int

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a handler with the national calendar enabled.
func NewHandler(store Store, engine *hours.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:      store,
		Engine:     engine,
		Logger:     logger,
		National:   true,
		BatchLimit: 8,
	}
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// Calculate classifies the punches in the body without storing anything.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	set := generic.NewHolidaySet()
	for _, s := range req.Holidays {
		date, err := generic.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid holiday date", err)
			return
		}
		set.Add(generic.Holiday{Date: date})
	}

	employeeID := generic.EmployeeID(req.EmployeeID)
	for i := range req.Punches {
		if req.Punches[i].EmployeeID == "" {
			req.Punches[i].EmployeeID = employeeID
		}
	}

	run := h.Engine.WithCalendar(h.layered(set)).Calculate(employeeID, req.Punches, req.HourlyRate)
	h.logSkipped(run.Skipped)

	writeJSON(w, http.StatusOK, toBulletinDTO(run))
}

// GetBulletin computes the payroll bulletin of one employee.
// GET /api/employees/{id}/bulletin?from=YYYY-MM-DD&to=YYYY-MM-DD[&format=csv|rows]
//
// Without from/to the current month is used.
func (h *Handler) GetBulletin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.EmployeeID(chi.URLParam(r, "id"))

	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		if generic.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}

	ep, dates, err := h.employeePeriod(ctx, *emp, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
		return
	}

	run := h.Engine.WithCalendar(ep.Calendar).Calculate(ep.EmployeeID, ep.Punches, ep.HourlyRate)
	run = clip(run, period, dates)
	h.logSkipped(run.Skipped)

	switch r.URL.Query().Get("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bulletin-%s-%s.csv", id, period.Start.Key()))
		if err := export.WriteCSV(w, export.Rows(run)); err != nil {
			h.Logger.Error("writing csv bulletin", slog.String("employee_id", string(id)), slog.Any("error", err))
		}
		return
	case "rows":
		w.Header().Set("Content-Type", "application/json")
		skipped := hours.BatchReport{Skipped: run.Skipped}.SkippedMessage()
		if err := export.WriteJSON(w, export.Rows(run), skipped); err != nil {
			h.Logger.Error("writing json bulletin", slog.String("employee_id", string(id)), slog.Any("error", err))
		}
		return
	}

	writeJSON(w, http.StatusOK, h.bulletinDTO(*emp, period, run))
}

// BatchBulletins computes bulletins for several employees concurrently.
// POST /api/bulletins
func (h *Handler) BatchBulletins(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BatchBulletinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period, err := parsePeriod(req.From, req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	var employees []generic.Employee
	if len(req.EmployeeIDs) == 0 {
		employees, err = h.Store.ListEmployees(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
			return
		}
	} else {
		for _, id := range req.EmployeeIDs {
			emp, err := h.Store.GetEmployee(ctx, generic.EmployeeID(id))
			if err != nil {
				if generic.IsNotFound(err) {
					writeError(w, http.StatusNotFound, "Employee not found", err)
					return
				}
				writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
				return
			}
			employees = append(employees, *emp)
		}
	}

	periods := make([]hours.EmployeePeriod, len(employees))
	dates := make([]map[generic.PunchID]string, len(employees))
	for i, emp := range employees {
		periods[i], dates[i], err = h.employeePeriod(ctx, emp, period)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load punches", err)
			return
		}
	}

	report, err := hours.Batch(ctx, h.Engine, periods, h.BatchLimit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Batch calculation cancelled", err)
		return
	}

	resp := BatchBulletinResponse{Bulletins: make([]BulletinDTO, 0, len(report.Runs))}
	var skipped []*hours.InvalidPunchError
	for i, run := range report.Runs {
		run = clip(run, period, dates[i])
		h.logSkipped(run.Skipped)
		skipped = append(skipped, run.Skipped...)
		resp.Bulletins = append(resp.Bulletins, h.bulletinDTO(employees[i], period, run))
	}
	resp.SkippedMessage = hours.BatchReport{Skipped: skipped}.SkippedMessage()

	writeJSON(w, http.StatusOK, resp)
}

// employeePeriod loads what one calculation needs. Punches are read one day
// beyond each end of the period; clip drops the workdays anchored outside.
// The returned map holds the stored date of every punch.
func (h *Handler) employeePeriod(ctx context.Context, emp generic.Employee, period generic.Period) (hours.EmployeePeriod, map[generic.PunchID]string, error) {
	padded := generic.Period{Start: period.Start.AddDays(-1), End: period.End.AddDays(1)}

	records, err := h.Store.PunchesInRange(ctx, emp.ID, padded)
	if err != nil {
		return hours.EmployeePeriod{}, nil, err
	}

	raws := make([]hours.RawPunch, 0, len(records))
	dates := make(map[generic.PunchID]string, len(records))
	for _, rec := range records {
		raws = append(raws, hours.RawPunchFromRecord(rec))
		dates[rec.ID] = rec.Date
	}

	return hours.EmployeePeriod{
		EmployeeID: emp.ID,
		Punches:    raws,
		HourlyRate: emp.HourlyRate,
		Calendar:   h.calendarFor(ctx, emp.CompanyID, padded),
	}, dates, nil
}

// clip restricts a run to the period, including the skipped punches.
func clip(run hours.Run, period generic.Period, dates map[generic.PunchID]string) hours.Run {
	run = run.Within(period)
	var skipped []*hours.InvalidPunchError
	for _, s := range run.Skipped {
		date, err := generic.ParseDate(dates[s.PunchID])
		if err != nil || period.Contains(date) {
			skipped = append(skipped, s)
		}
	}
	run.Skipped = skipped
	return run
}

// calendarFor builds the holiday calendar of one run. When holiday data
// cannot be loaded the run proceeds with the national calendar only.
func (h *Handler) calendarFor(ctx context.Context, companyID string, period generic.Period) generic.HolidayCalendar {
	if companyID == "" {
		companyID = h.CompanyID
	}
	set := generic.NewHolidaySet()
	holidays, err := h.Store.HolidaysInRange(ctx, companyID, period)
	if err != nil {
		h.Logger.Warn("holiday data unavailable, calculating without stored holidays",
			slog.String("company_id", companyID),
			slog.String("period", period.String()),
			slog.Any("error", err))
		return h.layered(set)
	}
	for _, hol := range holidays {
		set.Add(hol)
	}
	return h.layered(set)
}

func (h *Handler) layered(set *generic.HolidaySet) generic.HolidayCalendar {
	if !h.National {
		return set
	}
	return calendar.Brazil{IncludeOptional: h.IncludeOptional, CompanyHolidays: set}
}

func (h *Handler) logSkipped(skipped []*hours.InvalidPunchError) {
	for _, s := range skipped {
		h.Logger.Warn("punch skipped",
			slog.String("employee_id", string(s.EmployeeID)),
			slog.String("punch_id", string(s.PunchID)),
			slog.Any("error", s.Reason))
	}
}

func (h *Handler) bulletinDTO(emp generic.Employee, period generic.Period, run hours.Run) BulletinDTO {
	dto := toBulletinDTO(run)
	dto.EmployeeName = emp.Name
	dto.Position = emp.Position
	dto.From = period.Start.Key()
	dto.To = period.End.Key()
	return dto
}

func periodFromQuery(r *http.Request) (generic.Period, error) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" && to == "" {
		now := time.Now()
		return generic.MonthPeriod(now.Year(), now.Month()), nil
	}
	return parsePeriod(from, to)
}

func parsePeriod(from, to string) (generic.Period, error) {
	start, err := generic.ParseDate(from)
	if err != nil {
		return generic.Period{}, fmt.Errorf("from: %w", err)
	}
	end, err := generic.ParseDate(to)
	if err != nil {
		return generic.Period{}, fmt.Errorf("to: %w", err)
	}
	period := generic.Period{Start: start, End: end}
	if err := period.Validate(); err != nil {
		return generic.Period{}, err
	}
	return period, nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns one employee.
// GET /api/employees/{id}
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		if generic.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or updates an employee.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if req.HourlyRate.IsNegative() {
		writeError(w, http.StatusBadRequest, "Hourly rate must not be negative", nil)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	emp := generic.Employee{
		ID:         generic.EmployeeID(req.ID),
		Name:       req.Name,
		Position:   req.Position,
		CompanyID:  req.CompanyID,
		HourlyRate: req.HourlyRate,
		CreatedAt:  time.Now(),
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// ImportPunches stores the valid punches of the body and reports the rest.
// POST /api/employees/{id}/punches
func (h *Handler) ImportPunches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := generic.EmployeeID(chi.URLParam(r, "id"))

	if _, err := h.Store.GetEmployee(ctx, id); err != nil {
		if generic.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}

	var req ImportPunchesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	resp, err := h.importPunches(ctx, id, req.Source, req.Punches)
	if err != nil {
		if errors.Is(err, generic.ErrDuplicatePunch) {
			writeError(w, http.StatusConflict, "Punch already recorded", err)
			return
		}
		if generic.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save punches", err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// importPunches normalizes raws and stores the valid ones as received.
// Punches without an ID get a fresh UUID.
func (h *Handler) importPunches(ctx context.Context, id generic.EmployeeID, source string, raws []hours.RawPunch) (ImportPunchesResponse, error) {
	byID := make(map[generic.PunchID]hours.RawPunch, len(raws))
	for i := range raws {
		raws[i].EmployeeID = id
		if raws[i].ID == "" {
			raws[i].ID = generic.PunchID(uuid.NewString())
		}
		byID[raws[i].ID] = raws[i]
	}

	punches, skipped := hours.NormalizeAll(raws, h.Engine.Rules.Location)
	h.logSkipped(skipped)

	now := time.Now()
	records := make([]generic.PunchRecord, 0, len(punches))
	ids := make([]string, 0, len(punches))
	for _, p := range punches {
		raw := byID[p.ID]
		records = append(records, generic.PunchRecord{
			ID:         p.ID,
			EmployeeID: id,
			Entry:      raw.Entry.String(),
			Exit:       raw.Exit.String(),
			Date:       generic.DateOf(p.Entry).Key(),
			Source:     source,
			CreatedAt:  now,
		})
		ids = append(ids, string(p.ID))
	}

	if len(records) > 0 {
		if err := h.Store.SavePunches(ctx, records); err != nil {
			return ImportPunchesResponse{}, err
		}
	}

	return ImportPunchesResponse{
		Stored:         len(records),
		IDs:            ids,
		Skipped:        toSkippedDTOs(skipped),
		SkippedMessage: hours.BatchReport{Skipped: skipped}.SkippedMessage(),
	}, nil
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns all holidays.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := r.URL.Query().Get("company_id")

	holidays, err := h.Store.GetAllHolidays(ctx, companyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}

	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday creates a new holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	holiday := generic.Holiday{
		ID:        uuid.NewString(),
		CompanyID: req.CompanyID,
		Date:      date,
		Name:      req.Name,
		Recurring: req.Recurring,
	}

	if err := h.Store.SaveHoliday(r.Context(), holiday); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}

	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday removes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteHoliday(r.Context(), id); err != nil {
		if generic.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Holiday not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddDefaultHolidays stores the Brazilian national holidays of a year.
// POST /api/holidays/defaults
func (h *Handler) AddDefaultHolidays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req DefaultHolidaysRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	if req.Year == 0 {
		req.Year = time.Now().Year()
	}

	defaults := calendar.Brazil{IncludeOptional: req.IncludeOptional}.Holidays(req.Year)
	for _, hol := range defaults {
		hol.ID = fmt.Sprintf("br-%s-%s", req.CompanyID, hol.Date.Key())
		hol.CompanyID = req.CompanyID
		if err := h.Store.SaveHoliday(ctx, hol); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "created",
		"year":   req.Year,
		"count":  len(defaults),
	})
}

// ImportHolidays stores the events of an iCalendar file or URL as holidays.
// POST /api/holidays/import
func (h *Handler) ImportHolidays(w http.ResponseWriter, r *http.Request) {
	var req ImportHolidaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, "source is required", nil)
		return
	}

	count, err := h.ImportCalendar(r.Context(), req.Source, req.CompanyID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to import calendar", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "imported",
		"count":  count,
	})
}

// ImportCalendar fetches an iCalendar source and stores its holidays.
// Re-importing the same feed updates rows in place.
func (h *Handler) ImportCalendar(ctx context.Context, source, companyID string) (int, error) {
	holidays, err := calendar.FetchICS(ctx, source, companyID)
	if err != nil {
		return 0, err
	}
	for _, hol := range holidays {
		if err := h.Store.SaveHoliday(ctx, hol); err != nil {
			return 0, fmt.Errorf("saving holiday %s: %w", hol.Date.Key(), err)
		}
	}
	h.Logger.Info("holidays imported",
		slog.String("source", source),
		slog.String("company_id", companyID),
		slog.Int("count", len(holidays)))
	return len(holidays), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
