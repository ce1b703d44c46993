/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the calculation core from the external API contract: the core returns
  decimal hours, the API adds HH:MM renderings and two-decimal money.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Employee:   EmployeeDTO, CreateEmployeeRequest
  Punches:    ImportPunchesRequest, ImportPunchesResponse, SkippedPunchDTO
  Bulletin:   CalculateRequest, BulletinDTO, WorkdayDTO, HoursDTO, ValuationDTO
  Batch:      BatchBulletinRequest, BatchBulletinResponse
  Holidays:   HolidayDTO, CreateHolidayRequest, DefaultHolidaysRequest, ImportHolidaysRequest
  Scenarios:  ScenarioDTO, LoadScenarioRequest

SEE ALSO:
  - handlers.go: Uses these types
  - hours/types.go: BucketedResult
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/hours"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Position   string `json:"position,omitempty"`
	CompanyID  string `json:"company_id,omitempty"`
	HourlyRate string `json:"hourly_rate"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create or update an employee.
// HourlyRate accepts a JSON number or a decimal string.
type CreateEmployeeRequest struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Position   string          `json:"position"`
	CompanyID  string          `json:"company_id"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

func toEmployeeDTO(e generic.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         string(e.ID),
		Name:       e.Name,
		Position:   e.Position,
		CompanyID:  e.CompanyID,
		HourlyRate: e.HourlyRate.StringFixed(2),
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// PUNCHES
// =============================================================================

// ImportPunchesRequest carries raw punches for one employee.
// Entry/exit may be ISO strings, epoch seconds, epoch milliseconds or null.
type ImportPunchesRequest struct {
	Source  string           `json:"source,omitempty"`
	Punches []hours.RawPunch `json:"punches"`
}

// ImportPunchesResponse reports what was stored and what was skipped.
type ImportPunchesResponse struct {
	Stored         int               `json:"stored"`
	IDs            []string          `json:"ids"`
	Skipped        []SkippedPunchDTO `json:"skipped"`
	SkippedMessage string            `json:"skipped_message,omitempty"`
}

// SkippedPunchDTO describes one rejected punch.
type SkippedPunchDTO struct {
	PunchID    string `json:"punch_id"`
	EmployeeID string `json:"employee_id,omitempty"`
	Reason     string `json:"reason"`
}

func toSkippedDTOs(errs []*hours.InvalidPunchError) []SkippedPunchDTO {
	dtos := make([]SkippedPunchDTO, 0, len(errs))
	for _, e := range errs {
		dtos = append(dtos, SkippedPunchDTO{
			PunchID:    string(e.PunchID),
			EmployeeID: string(e.EmployeeID),
			Reason:     e.Reason.Error(),
		})
	}
	return dtos
}

// =============================================================================
// BULLETIN
// =============================================================================

// CalculateRequest is a stateless calculation: nothing is read or stored.
type CalculateRequest struct {
	EmployeeID string           `json:"employee_id"`
	HourlyRate decimal.Decimal  `json:"hourly_rate"`
	Punches    []hours.RawPunch `json:"punches"`
	Holidays   []string         `json:"holidays,omitempty"` // YYYY-MM-DD
}

// HoursDTO renders a BucketedResult as HH:MM strings.
type HoursDTO struct {
	DayHours          string `json:"day_hours"`
	NightHours        string `json:"night_hours"`
	RawNightHours     string `json:"raw_night_hours"`
	FictitiousHours   string `json:"fictitious_hours"`
	TotalHours        string `json:"total_hours"`
	NormalHours       string `json:"normal_hours"`
	NightPremiumHours string `json:"night_premium_hours"`
	Extra50Day        string `json:"extra50_day"`
	Extra50Night      string `json:"extra50_night"`
	Extra100Day       string `json:"extra100_day"`
	Extra100Night     string `json:"extra100_night"`
}

func toHoursDTO(h hours.BucketedResult) HoursDTO {
	return HoursDTO{
		DayHours:          hours.FormatHours(h.DayHours),
		NightHours:        hours.FormatHours(h.NightHours),
		RawNightHours:     hours.FormatHours(h.RawNightHours),
		FictitiousHours:   hours.FormatHours(h.FictitiousHours),
		TotalHours:        hours.FormatHours(h.TotalHours),
		NormalHours:       hours.FormatHours(h.NormalHours),
		NightPremiumHours: hours.FormatHours(h.NightPremiumHours),
		Extra50Day:        hours.FormatHours(h.Extra50Day),
		Extra50Night:      hours.FormatHours(h.Extra50Night),
		Extra100Day:       hours.FormatHours(h.Extra100Day),
		Extra100Night:     hours.FormatHours(h.Extra100Night),
	}
}

// ValuationDTO is money rounded to cents.
type ValuationDTO struct {
	Normal   string `json:"normal"`
	Extra50  string `json:"extra50"`
	Extra100 string `json:"extra100"`
	Total    string `json:"total"`
}

func toValuationDTO(v hours.Valuation) ValuationDTO {
	return ValuationDTO{
		Normal:   v.Normal.StringFixed(2),
		Extra50:  v.Extra50.StringFixed(2),
		Extra100: v.Extra100.StringFixed(2),
		Total:    v.Total.StringFixed(2),
	}
}

// WorkdayDTO is one WorkdayGroup with its classification.
type WorkdayDTO struct {
	AnchorDate string               `json:"anchor_date"`
	PunchIDs   []string             `json:"punch_ids"`
	Hours      hours.BucketedResult `json:"hours"`
	Formatted  HoursDTO             `json:"formatted"`
	Value      ValuationDTO         `json:"value"`
}

// BulletinDTO is the payroll bulletin of one employee-period.
type BulletinDTO struct {
	EmployeeID     string               `json:"employee_id"`
	EmployeeName   string               `json:"employee_name,omitempty"`
	Position       string               `json:"position,omitempty"`
	From           string               `json:"from,omitempty"`
	To             string               `json:"to,omitempty"`
	HourlyRate     string               `json:"hourly_rate"`
	Workdays       []WorkdayDTO         `json:"workdays"`
	Total          hours.BucketedResult `json:"total"`
	TotalFormatted HoursDTO             `json:"total_formatted"`
	TotalValue     ValuationDTO         `json:"total_value"`
	Skipped        []SkippedPunchDTO    `json:"skipped"`
	SkippedMessage string               `json:"skipped_message,omitempty"`
}

func toBulletinDTO(run hours.Run) BulletinDTO {
	dto := BulletinDTO{
		EmployeeID:     string(run.EmployeeID),
		HourlyRate:     run.HourlyRate.StringFixed(2),
		Workdays:       make([]WorkdayDTO, 0, len(run.Groups)),
		Total:          run.Total,
		TotalFormatted: toHoursDTO(run.Total),
		TotalValue:     toValuationDTO(run.TotalValue),
		Skipped:        toSkippedDTOs(run.Skipped),
		SkippedMessage: hours.BatchReport{Skipped: run.Skipped}.SkippedMessage(),
	}
	for _, g := range run.Groups {
		ids := make([]string, 0, len(g.Group.Intervals))
		for _, iv := range g.Group.Intervals {
			ids = append(ids, string(iv.PunchID))
		}
		dto.Workdays = append(dto.Workdays, WorkdayDTO{
			AnchorDate: g.Group.AnchorDate.Key(),
			PunchIDs:   ids,
			Hours:      g.Hours,
			Formatted:  toHoursDTO(g.Hours),
			Value:      toValuationDTO(g.Value),
		})
	}
	return dto
}

// BatchBulletinRequest asks for bulletins of several employees over one period.
// An empty EmployeeIDs means every employee.
type BatchBulletinRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
	From        string   `json:"from"`
	To          string   `json:"to"`
}

// BatchBulletinResponse holds one bulletin per employee, in request order.
type BatchBulletinResponse struct {
	Bulletins      []BulletinDTO `json:"bulletins"`
	SkippedMessage string        `json:"skipped_message,omitempty"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO represents a holiday in API responses.
type HolidayDTO struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

func toHolidayDTO(h generic.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:        h.ID,
		CompanyID: h.CompanyID,
		Date:      h.Date.Key(),
		Name:      h.Name,
		Recurring: h.Recurring,
	}
}

// CreateHolidayRequest creates one holiday.
type CreateHolidayRequest struct {
	CompanyID string `json:"company_id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

// DefaultHolidaysRequest seeds the Brazilian national calendar for a year.
type DefaultHolidaysRequest struct {
	CompanyID       string `json:"company_id"`
	Year            int    `json:"year"`
	IncludeOptional bool   `json:"include_optional"`
}

// ImportHolidaysRequest imports an iCalendar file or URL.
type ImportHolidaysRequest struct {
	CompanyID string `json:"company_id"`
	Source    string `json:"source"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
