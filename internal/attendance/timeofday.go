package attendance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// bareTimeMaxLen is the longest string still treated as a bare HH:MM:SS value
const bareTimeMaxLen = 8

// fullTimestampLayouts lists the absolute timestamp forms the sheet API emits.
// Layouts without a zone parse as UTC, so their clock reads back verbatim.
var fullTimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.RFC1123Z,
	time.RFC1123,
}

// TimeOfDay is a calendar-date independent wall clock reading.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// NewTimeOfDay builds a TimeOfDay, rejecting out of range components
func NewTimeOfDay(hour, minute, second int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d:%02d out of range", ErrUnparseableTime, hour, minute, second)
	}
	return TimeOfDay{Hour: hour, Minute: minute, Second: second}, nil
}

// Seconds returns the number of seconds since midnight
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// After reports whether t is strictly later in the day than u
func (t TimeOfDay) After(u TimeOfDay) bool { return t.Seconds() > u.Seconds() }

// Before reports whether t is strictly earlier in the day than u
func (t TimeOfDay) Before(u TimeOfDay) bool { return t.Seconds() < u.Seconds() }

// Sub returns t-u. Negative when u is later in the day.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return time.Duration(t.Seconds()-u.Seconds()) * time.Second
}

// String formats as HH:MM:SS
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Clock formats as HH:MM, keeping seconds only when non-zero
func (t TimeOfDay) Clock() string {
	if t.Second != 0 {
		return t.String()
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// UnmarshalText lets thresholds be configured as "10:30" strings
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := parseBareTime(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// OptionalTime is a TimeOfDay that may be absent
type OptionalTime struct {
	Time  TimeOfDay
	Valid bool
}

// Some wraps a present value
func Some(t TimeOfDay) OptionalTime { return OptionalTime{Time: t, Valid: true} }

// String returns HH:MM:SS or an em dash placeholder
func (o OptionalTime) String() string {
	if !o.Valid {
		return "—"
	}
	return o.Time.String()
}

// MarshalJSON renders absent values as null
func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Time.String())
}

// ParseTimeOfDay extracts the time of day from a raw sheet cell.
//
// A bare "HH:MM[:SS]" string (at most 8 characters, containing a colon) is
// read as wall clock components directly. Anything else is parsed as an
// absolute timestamp and its UTC clock components are kept, discarding the
// date. This mirrors how the sheet stores check events: typed times stay as
// local strings while times written by the form are serialised in UTC.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return TimeOfDay{}, ErrEmptyTime
	}

	if len(s) <= bareTimeMaxLen && strings.Contains(s, ":") {
		return parseBareTime(s)
	}

	ts, err := parseTimestamp(s)
	if err != nil {
		return TimeOfDay{}, err
	}
	utc := ts.UTC()
	return TimeOfDay{Hour: utc.Hour(), Minute: utc.Minute(), Second: utc.Second()}, nil
}

// DisplayClock renders a raw check cell for people reading it in loc.
// Bare values are shown as typed; full timestamps are converted into loc.
func DisplayClock(raw string, loc *time.Location) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "—"
	}
	if len(s) <= bareTimeMaxLen && strings.Contains(s, ":") {
		t, err := parseBareTime(s)
		if err != nil {
			return "—"
		}
		return t.String()
	}
	ts, err := parseTimestamp(s)
	if err != nil {
		return "—"
	}
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format("15:04:05")
}

func parseBareTime(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrUnparseableTime, s)
	}

	var comps [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrUnparseableTime, s)
		}
		comps[i] = n
	}

	return NewTimeOfDay(comps[0], comps[1], comps[2])
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range fullTimestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTime, s)
}
