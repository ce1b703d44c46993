package hours

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// HH:MM PRESENTATION
// =============================================================================

// FormatHours renders decimal hours as zero-padded HH:MM, rounded to the
// nearest minute. 7.999 becomes "08:00", not "07:60", and a negative
// value that rounds to zero prints without a sign.
func FormatHours(h float64) string {
	minutes := int64(math.Round(math.Abs(h) * 60))
	sign := ""
	if h < 0 && minutes > 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// ParseFormattedHours reads an HH:MM string back into decimal hours.
func ParseFormattedHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	hh, mm, ok := strings.Cut(s, ":")
	if !ok || hh == "" || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHoursFormat, s)
	}
	whole, err := strconv.ParseUint(hh, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHoursFormat, s)
	}
	minutes, err := strconv.ParseUint(mm, 10, 8)
	if err != nil || minutes >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHoursFormat, s)
	}

	h := float64(whole) + float64(minutes)/60
	if negative {
		h = -h
	}
	return h, nil
}
