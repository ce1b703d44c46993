package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const punchesJSON = `[
	{"id": "p-1", "entry": "2025-03-10T08:00:00Z", "exit": "2025-03-10T17:00:00Z"},
	{"id": "p-2", "entry": "2025-04-21T08:00:00Z", "exit": "2025-04-21T14:00:00Z"},
	{"id": "p-3", "entry": null, "exit": "2025-04-22T14:00:00Z"}
]`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCalc_JSON(t *testing.T) {
	// GIVEN: A weekday with overtime, Tiradentes, and a broken punch
	path := writeFile(t, "punches.json", punchesJSON)

	// WHEN: Computing at 25.00/h
	stdout, stderr, err := execute(t, "calc", "--punches", path, "--rate", "25", "--format", "json", "--employee", "emp-7")
	require.NoError(t, err)

	// THEN: Two workdays plus a total, and the skipped punch is reported
	var doc struct {
		Count   int    `json:"count"`
		Skipped string `json:"skipped"`
		Rows    []struct {
			EmployeeID  string `json:"employee_id"`
			Date        string `json:"date"`
			NormalHours string `json:"normal_hours"`
			Extra100Day string `json:"extra100_day"`
			ValueTotal  string `json:"value_total"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	require.Equal(t, 3, doc.Count)
	assert.Equal(t, "emp-7", doc.Rows[0].EmployeeID)
	assert.Equal(t, "08:00", doc.Rows[0].NormalHours)
	assert.Equal(t, "06:00", doc.Rows[1].Extra100Day)
	assert.Equal(t, "TOTAL", doc.Rows[2].Date)
	assert.Equal(t, "537.50", doc.Rows[2].ValueTotal)
	assert.Equal(t, "1 record skipped due to invalid data", doc.Skipped)

	assert.Contains(t, stderr, "punch skipped")
	assert.Contains(t, stderr, "p-3")
}

func TestCalc_NoNationalCalendar(t *testing.T) {
	path := writeFile(t, "punches.json", punchesJSON)

	stdout, _, err := execute(t, "calc", "--punches", path, "--format", "csv", "--no-national")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	// Apr 21 is an ordinary Monday without the national calendar
	assert.Contains(t, lines[2], "2025-04-21")
	assert.Contains(t, lines[2], "06:00,00:00,00:00,00:00,00:00,00:00")
}

func TestCalc_HolidaysFromICS(t *testing.T) {
	path := writeFile(t, "punches.json", `[{"id": "p-1", "entry": "2025-03-10T08:00:00Z", "exit": "2025-03-10T10:00:00Z"}]`)
	ics := writeFile(t, "extra.ics", "BEGIN:VCALENDAR\r\n"+
		"VERSION:2.0\r\n"+
		"PRODID:-//payroll//test//PT\r\n"+
		"BEGIN:VEVENT\r\n"+
		"UID:ponto@example.com\r\n"+
		"DTSTAMP:20250101T000000Z\r\n"+
		"DTSTART;VALUE=DATE:20250310\r\n"+
		"SUMMARY:Ponto facultativo\r\n"+
		"END:VEVENT\r\n"+
		"END:VCALENDAR\r\n")

	stdout, _, err := execute(t, "calc", "--punches", path, "--holidays", ics, "--rate", "10", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, "TOTAL")
	assert.Contains(t, stdout, "40.00")
}

func TestCalc_Table(t *testing.T) {
	path := writeFile(t, "punches.json", punchesJSON)

	stdout, _, err := execute(t, "calc", "--punches", path, "--rate", "25")
	require.NoError(t, err)

	assert.Contains(t, stdout, "2025-03-10")
	assert.Contains(t, stdout, "TOTAL")
	assert.Contains(t, stdout, "537.50")
	assert.Contains(t, stdout, "1 record skipped due to invalid data")
}

func TestCalc_Errors(t *testing.T) {
	path := writeFile(t, "punches.json", punchesJSON)

	tests := map[string][]string{
		"missing punches flag": {"calc"},
		"unreadable file":      {"calc", "--punches", filepath.Join(t.TempDir(), "none.json")},
		"bad rate":             {"calc", "--punches", path, "--rate", "abc"},
		"bad format":           {"calc", "--punches", path, "--format", "pdf"},
		"bad timezone":         {"calc", "--punches", path, "--timezone", "Mars/Olympus"},
		"bad json":             {"calc", "--punches", writeFile(t, "bad.json", `{"id": 1}`)},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestHolidays(t *testing.T) {
	stdout, _, err := execute(t, "holidays", "--year", "2025", "--optional")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "2025-01-01"))
	assert.Contains(t, stdout, "2025-04-18")
}

func TestRules(t *testing.T) {
	path := writeFile(t, "rules.toml", "timezone = \"America/Sao_Paulo\"\n\n[daily_quota]\nsaturday = 0\n")

	stdout, _, err := execute(t, "rules", "--rules", path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "America/Sao_Paulo", doc["timezone"])
}
