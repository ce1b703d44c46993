package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{
	"Employee", "Date", "Punches",
	"Day", "Night", "Fictitious", "Total",
	"Normal", "Night Premium",
	"Extra 50% Day", "Extra 50% Night", "Extra 100% Day", "Extra 100% Night",
	"Value Normal", "Value Extra 50%", "Value Extra 100%", "Value Total",
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []BulletinRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.EmployeeID, r.Date, strconv.Itoa(r.Punches),
			r.DayHours, r.NightHours, r.FictitiousHours, r.TotalHours,
			r.NormalHours, r.NightPremiumHours,
			r.Extra50Day, r.Extra50Night, r.Extra100Day, r.Extra100Night,
			r.ValueNormal, r.ValueExtra50, r.ValueExtra100, r.ValueTotal,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
