package hours_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/hours"
)

// 2025-03-10T10:00:00Z
const mondayTenUTC = 1741600800

func TestNormalize_EpochSecondsAndMillisAgree(t *testing.T) {
	seconds := hours.RawPunch{ID: "s", Entry: hours.NumericTimestamp(mondayTenUTC), Exit: hours.NumericTimestamp(mondayTenUTC + 3600)}
	millis := hours.RawPunch{ID: "m", Entry: hours.NumericTimestamp(mondayTenUTC * 1000), Exit: hours.NumericTimestamp((mondayTenUTC + 3600) * 1000)}

	a, err := hours.Normalize(seconds, time.UTC)
	require.NoError(t, err)
	b, err := hours.Normalize(millis, time.UTC)
	require.NoError(t, err)

	assert.True(t, a.Entry.Equal(b.Entry))
	assert.True(t, a.Exit.Equal(b.Exit))
	assert.Equal(t, at(2025, 3, 10, 10, 0), a.Entry)
	assert.Equal(t, time.Hour, a.Duration())
}

func TestNormalize_ISOAndEpochAgree(t *testing.T) {
	raw := hours.RawPunch{
		ID:    "mixed",
		Entry: hours.ISOTimestamp("2025-03-10T07:00:00-03:00"),
		Exit:  hours.EpochMillis((mondayTenUTC + 7200) * 1000),
	}

	p, err := hours.Normalize(raw, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, at(2025, 3, 10, 10, 0), p.Entry)
	assert.Equal(t, 2*time.Hour, p.Duration())
}

func TestNormalize_ZonelessISOReadInLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	raw := hours.RawPunch{ID: "p", Entry: hours.ISOTimestamp("2025-03-10T08:00:00"), Exit: hours.ISOTimestamp("2025-03-10 17:00")}
	p, err := hours.Normalize(raw, loc)
	require.NoError(t, err)

	assert.Equal(t, at(2025, 3, 10, 11, 0), p.Entry.UTC())
	assert.Equal(t, 9*time.Hour, p.Duration())
}

func TestNormalize_Rejections(t *testing.T) {
	entry := hours.ISOTimestamp("2025-03-10T08:00:00Z")
	exit := hours.ISOTimestamp("2025-03-10T17:00:00Z")

	tests := []struct {
		name string
		raw  hours.RawPunch
		want error
	}{
		{"both absent", hours.RawPunch{}, hours.ErrNoValidTime},
		{"both absent with date", hours.RawPunch{Date: "2025-03-10"}, hours.ErrNoValidTime},
		{"missing exit", hours.RawPunch{Entry: entry}, hours.ErrMissingExit},
		{"missing entry", hours.RawPunch{Exit: exit}, hours.ErrMissingEntry},
		{"unparseable entry without date", hours.RawPunch{Entry: hours.ISOTimestamp("yesterday"), Exit: hours.ISOTimestamp("today")}, hours.ErrMissingDate},
		{"unparseable entry with date", hours.RawPunch{Entry: hours.ISOTimestamp("yesterday"), Exit: exit}, hours.ErrUnparseableTimestamp},
		{"unparseable both with date hint", hours.RawPunch{Entry: hours.ISOTimestamp("x"), Exit: hours.ISOTimestamp("y"), Date: "2025-03-10"}, hours.ErrUnparseableTimestamp},
		{"bad date hint", hours.RawPunch{Entry: hours.ISOTimestamp("x"), Exit: hours.ISOTimestamp("y"), Date: "10/03/2025"}, hours.ErrMissingDate},
		{"exit before entry", hours.RawPunch{Entry: exit, Exit: entry}, hours.ErrNonPositiveInterval},
		{"zero length", hours.RawPunch{Entry: entry, Exit: entry}, hours.ErrNonPositiveInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.raw.ID = "bad"
			tt.raw.EmployeeID = "emp-1"

			_, err := hours.Normalize(tt.raw, time.UTC)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, hours.ErrInvalidPunch)
			assert.True(t, hours.IsClientError(err))

			var ipe *hours.InvalidPunchError
			require.ErrorAs(t, err, &ipe)
			assert.Equal(t, generic.PunchID("bad"), ipe.PunchID)
			assert.Equal(t, generic.EmployeeID("emp-1"), ipe.EmployeeID)
		})
	}
}

func TestNormalizeAll_ContinuesPastInvalidRecords(t *testing.T) {
	raws := []hours.RawPunch{
		punch("ok-1", at(2025, 3, 10, 8, 0), at(2025, 3, 10, 12, 0)),
		{ID: "no-exit", Entry: hours.ISOTimestamp("2025-03-10T13:00:00Z")},
		punch("ok-2", at(2025, 3, 10, 13, 0), at(2025, 3, 10, 17, 0)),
		{ID: "empty"},
	}

	punches, invalid := hours.NormalizeAll(raws, time.UTC)

	require.Len(t, punches, 2)
	assert.Equal(t, generic.PunchID("ok-1"), punches[0].ID)
	assert.Equal(t, generic.PunchID("ok-2"), punches[1].ID)

	require.Len(t, invalid, 2)
	assert.Equal(t, generic.PunchID("no-exit"), invalid[0].PunchID)
	assert.ErrorIs(t, invalid[0], hours.ErrMissingExit)
	assert.ErrorIs(t, invalid[1], hours.ErrNoValidTime)
}

func TestRawPunch_UnmarshalJSON(t *testing.T) {
	payload := `[
		{"id": "iso", "entry": "2025-03-10T08:00:00Z", "exit": "2025-03-10T17:00:00Z"},
		{"id": "secs", "entry": 1741600800, "exit": 1741604400},
		{"id": "millis", "entry": 1741600800000, "exit": 1741604400000.5},
		{"id": "nulls", "entry": null, "exit": "", "date": "2025-03-10"}
	]`

	var raws []hours.RawPunch
	require.NoError(t, json.Unmarshal([]byte(payload), &raws))
	require.Len(t, raws, 4)

	assert.Equal(t, hours.TimestampISO, raws[0].Entry.Kind)
	assert.Equal(t, hours.TimestampEpochSeconds, raws[1].Entry.Kind)
	assert.Equal(t, hours.TimestampEpochMillis, raws[2].Entry.Kind)
	assert.True(t, raws[3].Entry.IsAbsent())
	assert.True(t, raws[3].Exit.IsAbsent())
	assert.Equal(t, "2025-03-10", raws[3].Date)

	punches, invalid := hours.NormalizeAll(raws, time.UTC)
	assert.Len(t, punches, 3)
	require.Len(t, invalid, 1)
	assert.ErrorIs(t, invalid[0], hours.ErrNoValidTime)
}

func TestTimestamp_UnmarshalJSONRejectsObjects(t *testing.T) {
	var ts hours.Timestamp
	assert.Error(t, json.Unmarshal([]byte(`{"at": 1}`), &ts))
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	raw := hours.RawPunch{ID: "p", Entry: hours.ISOTimestamp("2025-03-10T08:00:00Z"), Exit: hours.EpochSeconds(mondayTenUTC)}
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p","entry":"2025-03-10T08:00:00Z","exit":1741600800}`, string(data))
}

func TestTimestampFromText(t *testing.T) {
	assert.True(t, hours.TimestampFromText("  ").IsAbsent())
	assert.Equal(t, hours.TimestampEpochSeconds, hours.TimestampFromText("1741600800").Kind)
	assert.Equal(t, hours.TimestampEpochMillis, hours.TimestampFromText("1741600800000").Kind)

	iso := hours.TimestampFromText("2025-03-10T08:00:00Z")
	assert.Equal(t, hours.TimestampISO, iso.Kind)
	assert.Equal(t, "2025-03-10T08:00:00Z", iso.String())
}

func TestRawPunchFromRecord(t *testing.T) {
	rec := generic.PunchRecord{ID: "r1", EmployeeID: "emp-1", Entry: "1741600800", Exit: "2025-03-10T12:00:00Z", Date: "2025-03-10"}

	p, err := hours.Normalize(hours.RawPunchFromRecord(rec), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, at(2025, 3, 10, 10, 0), p.Entry)
	assert.Equal(t, 2*time.Hour, p.Duration())
	assert.Equal(t, generic.EmployeeID("emp-1"), p.EmployeeID)
}
