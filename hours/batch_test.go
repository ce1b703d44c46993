package hours_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/hours"
)

func TestBatch_RunsInInputOrder(t *testing.T) {
	engine := newEngine(t)

	var periods []hours.EmployeePeriod
	for i := 0; i < 20; i++ {
		periods = append(periods, hours.EmployeePeriod{
			EmployeeID: generic.EmployeeID(fmt.Sprintf("emp-%02d", i)),
			Punches:    []hours.RawPunch{punch("p", at(2025, 3, 10, 8, 0), at(2025, 3, 10, 9+i%8, 0))},
			HourlyRate: decimal.NewFromInt(10),
		})
	}

	report, err := hours.Batch(context.Background(), engine, periods, 4)
	require.NoError(t, err)
	require.Len(t, report.Runs, len(periods))

	for i, run := range report.Runs {
		assert.Equal(t, periods[i].EmployeeID, run.EmployeeID)
		assert.InDelta(t, float64(1+i%8), run.Total.TotalHours, tolerance)
	}
	assert.Empty(t, report.Skipped)
	assert.Equal(t, "", report.SkippedMessage())
}

func TestBatch_CollectsSkippedRecords(t *testing.T) {
	engine := newEngine(t)
	periods := []hours.EmployeePeriod{
		{EmployeeID: "a", Punches: []hours.RawPunch{{ID: "bad-1"}}},
		{EmployeeID: "b", Punches: []hours.RawPunch{
			punch("ok", at(2025, 3, 10, 8, 0), at(2025, 3, 10, 12, 0)),
			{ID: "bad-2", Entry: hours.ISOTimestamp("2025-03-10T08:00:00Z")},
		}},
	}

	report, err := hours.Batch(context.Background(), engine, periods, 0)
	require.NoError(t, err)

	require.Len(t, report.Skipped, 2)
	assert.Equal(t, "2 records skipped due to invalid data", report.SkippedMessage())
	assert.InDelta(t, 4, report.Runs[1].Total.NormalHours, tolerance)

	single := hours.BatchReport{Skipped: report.Skipped[:1]}
	assert.Equal(t, "1 record skipped due to invalid data", single.SkippedMessage())
}

func TestBatch_PerPeriodCalendar(t *testing.T) {
	engine := newEngine(t)
	day := generic.NewTimePoint(2025, time.March, 10)
	p := punch("p", at(2025, 3, 10, 8, 0), at(2025, 3, 10, 12, 0))

	periods := []hours.EmployeePeriod{
		{EmployeeID: "plain", Punches: []hours.RawPunch{p}},
		{EmployeeID: "local-holiday", Punches: []hours.RawPunch{p}, Calendar: generic.NewHolidaySet(generic.Holiday{Date: day})},
	}

	report, err := hours.Batch(context.Background(), engine, periods, 2)
	require.NoError(t, err)

	assert.InDelta(t, 4, report.Runs[0].Total.NormalHours, tolerance)
	assert.InDelta(t, 4, report.Runs[1].Total.Extra100Day, tolerance)
	assert.Zero(t, report.Runs[1].Total.NormalHours)
}

func TestBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	periods := []hours.EmployeePeriod{{EmployeeID: "a"}, {EmployeeID: "b"}}
	_, err := hours.Batch(ctx, newEngine(t), periods, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
