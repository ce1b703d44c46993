package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/warp/payroll-engine/generic"
)

// maxEventDays bounds how many dates one event may expand to.
const maxEventDays = 366

// FetchICS loads holidays from an iCalendar URL or file path.
func FetchICS(ctx context.Context, source, companyID string) ([]generic.Holiday, error) {
	var r io.ReadCloser

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching calendar: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening calendar file: %w", err)
		}
		r = f
	}
	defer r.Close()

	return DecodeICS(r, companyID)
}

// DecodeICS reads every VEVENT of an iCalendar stream as holidays.
// An all-day event covers DTSTART up to, not including, DTEND.
// Events without a summary or a start date are skipped.
func DecodeICS(r io.Reader, companyID string) ([]generic.Holiday, error) {
	dec := ical.NewDecoder(r)
	var holidays []generic.Holiday

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			summary, _ := event.Props.Text(ical.PropSummary)
			if summary == "" {
				continue
			}
			start, err := event.DateTimeStart(nil)
			if err != nil || start.IsZero() {
				continue
			}
			end, err := event.DateTimeEnd(nil)
			if err != nil {
				end = time.Time{}
			}
			uid, _ := event.Props.Text(ical.PropUID)

			for _, date := range coveredDates(start, end) {
				holidays = append(holidays, generic.Holiday{
					ID:        holidayID(uid, date),
					CompanyID: companyID,
					Date:      date,
					Name:      summary,
				})
			}
		}
	}

	return holidays, nil
}

func coveredDates(start, end time.Time) []generic.TimePoint {
	first := generic.DateOf(start)
	if !end.After(start) {
		return []generic.TimePoint{first}
	}
	last := generic.DateOf(end.Add(-time.Nanosecond))

	var dates []generic.TimePoint
	for d := first; d.BeforeOrEqual(last) && len(dates) < maxEventDays; d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// holidayID is stable per event UID and date: re-imports overwrite.
func holidayID(uid string, date generic.TimePoint) string {
	if uid == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(uid+"/"+date.Key())).String()
}
