package hours

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// BATCH - Fan-out over independent employee-periods
// =============================================================================

// EmployeePeriod is the input of one independent calculation.
// Calendar overrides the engine's calendar when set (e.g. per-company holidays).
type EmployeePeriod struct {
	EmployeeID generic.EmployeeID
	Punches    []RawPunch
	HourlyRate decimal.Decimal
	Calendar   generic.HolidayCalendar
}

// BatchReport holds one Run per input, in input order, plus every punch that
// was skipped across the batch.
type BatchReport struct {
	Runs    []Run
	Skipped []*InvalidPunchError
}

// SkippedMessage is the user-facing summary of dropped records, or "" if none.
func (b BatchReport) SkippedMessage() string {
	if len(b.Skipped) == 0 {
		return ""
	}
	if len(b.Skipped) == 1 {
		return "1 record skipped due to invalid data"
	}
	return fmt.Sprintf("%d records skipped due to invalid data", len(b.Skipped))
}

// Batch computes every employee-period concurrently, at most limit at a time
// (limit <= 0 means unbounded). Runs share nothing but the read-only engine.
// The only error is ctx cancellation; invalid punches are reported, not fatal.
func Batch(ctx context.Context, engine *Engine, periods []EmployeePeriod, limit int) (BatchReport, error) {
	runs := make([]Run, len(periods))

	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, p := range periods {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			e := engine
			if p.Calendar != nil {
				e = engine.WithCalendar(p.Calendar)
			}
			runs[i] = e.Calculate(p.EmployeeID, p.Punches, p.HourlyRate)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BatchReport{}, err
	}

	report := BatchReport{Runs: runs}
	for _, run := range runs {
		report.Skipped = append(report.Skipped, run.Skipped...)
	}
	return report, nil
}
