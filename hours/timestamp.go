package hours

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIMESTAMP - Tagged variant for heterogeneous punch times
// =============================================================================

type TimestampKind int

const (
	TimestampAbsent TimestampKind = iota
	TimestampISO
	TimestampEpochSeconds
	TimestampEpochMillis
)

// epochMillisThreshold separates epoch-milliseconds from epoch-seconds for
// untyped numbers: anything above it is read as milliseconds.
const epochMillisThreshold = 1e12

// Timestamp is a punch time as received. Exactly one of Text (ISO) or
// Epoch is meaningful, depending on Kind.
type Timestamp struct {
	Kind  TimestampKind
	Text  string
	Epoch float64
}

func ISOTimestamp(s string) Timestamp       { return Timestamp{Kind: TimestampISO, Text: s} }
func EpochSeconds(v float64) Timestamp      { return Timestamp{Kind: TimestampEpochSeconds, Epoch: v} }
func EpochMillis(v float64) Timestamp       { return Timestamp{Kind: TimestampEpochMillis, Epoch: v} }
func TimeTimestamp(t time.Time) Timestamp   { return ISOTimestamp(t.Format(time.RFC3339Nano)) }
func (ts Timestamp) IsAbsent() bool         { return ts.Kind == TimestampAbsent }

// NumericTimestamp tags an untyped epoch number.
func NumericTimestamp(v float64) Timestamp {
	if v > epochMillisThreshold {
		return EpochMillis(v)
	}
	return EpochSeconds(v)
}

// TimestampFromText reads the stored text form: empty is absent, a bare
// number is an epoch value, anything else is ISO-8601.
func TimestampFromText(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return NumericTimestamp(v)
	}
	return ISOTimestamp(s)
}

func (ts Timestamp) String() string {
	switch ts.Kind {
	case TimestampISO:
		return ts.Text
	case TimestampEpochSeconds, TimestampEpochMillis:
		return strconv.FormatFloat(ts.Epoch, 'f', -1, 64)
	default:
		return ""
	}
}

// UnmarshalJSON accepts a string (ISO), a number (epoch) or null (absent).
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*ts = Timestamp{}
			return nil
		}
		*ts = ISOTimestamp(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("timestamp must be a string, number or null: %w", err)
	}
	*ts = NumericTimestamp(v)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	switch ts.Kind {
	case TimestampISO:
		return json.Marshal(ts.Text)
	case TimestampEpochSeconds, TimestampEpochMillis:
		return json.Marshal(ts.Epoch)
	default:
		return []byte("null"), nil
	}
}

// Layouts without an offset are read in the rules' location.
var (
	zonedLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04Z07:00"}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
)

// ParsePunchTimestamp converts any timestamp variant to an instant in loc.
func ParsePunchTimestamp(ts Timestamp, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch ts.Kind {
	case TimestampISO:
		s := strings.TrimSpace(ts.Text)
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.In(loc), nil
			}
		}
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, ts.Text)
	case TimestampEpochSeconds:
		return epochTime(ts.Epoch, 1e9, loc)
	case TimestampEpochMillis:
		return epochTime(ts.Epoch, 1e6, loc)
	default:
		return time.Time{}, ErrNoValidTime
	}
}

func epochTime(v, nanosPerUnit float64, loc *time.Location) (time.Time, error) {
	nanos := v * nanosPerUnit
	if math.IsNaN(nanos) || math.IsInf(nanos, 0) || math.Abs(nanos) > math.MaxInt64 {
		return time.Time{}, fmt.Errorf("%w: epoch %v out of range", ErrUnparseableTimestamp, v)
	}
	return time.Unix(0, int64(math.Round(nanos))).In(loc), nil
}
