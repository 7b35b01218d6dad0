package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/username/attendance-dashboard/pkg/dateutil"
)

// Calendar decides whether a date is a non-working day
type Calendar interface {
	IsHoliday(date time.Time) bool
}

// Rules holds the thresholds used by classification
type Rules struct {
	// HalfDayBelow is the worked duration under which a day is a half day
	HalfDayBelow time.Duration
	// CompletedAt is the worked duration from which a checked-out day is complete
	CompletedAt      time.Duration
	LateSevereAfter  TimeOfDay
	LateWarningAfter TimeOfDay
	EarlyOutBefore   TimeOfDay
}

// DefaultRules returns the office policy thresholds
func DefaultRules() Rules {
	return Rules{
		HalfDayBelow:     4 * time.Hour,
		CompletedAt:      7 * time.Hour,
		LateSevereAfter:  TimeOfDay{Hour: 11},
		LateWarningAfter: TimeOfDay{Hour: 10, Minute: 30},
		EarlyOutBefore:   TimeOfDay{Hour: 17, Minute: 30},
	}
}

// Validate checks that the thresholds are consistent
func (r Rules) Validate() error {
	if r.HalfDayBelow <= 0 {
		return errors.New("half day threshold must be positive")
	}
	if r.CompletedAt <= 0 {
		return errors.New("completed threshold must be positive")
	}
	if r.LateWarningAfter.After(r.LateSevereAfter) {
		return fmt.Errorf("late warning threshold %s is after late severe threshold %s",
			r.LateWarningAfter, r.LateSevereAfter)
	}
	return nil
}

// Classifier turns raw day records into classified attendance.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules    Rules
	calendar Calendar
}

// NewClassifier creates a classifier over the given rules and calendar
func NewClassifier(rules Rules, calendar Calendar) *Classifier {
	return &Classifier{
		rules:    rules,
		calendar: calendar,
	}
}

// Rules returns the thresholds in use
func (c *Classifier) Rules() Rules {
	return c.rules
}

// IsHoliday delegates to the calendar
func (c *Classifier) IsHoliday(date time.Time) bool {
	return c.calendar != nil && c.calendar.IsHoliday(date)
}

// Summarize scans the pairs of row in index order.
//
// The first parsed check-in and the last parsed check-out become the day
// bounds. Only pairs whose check-out is later than their check-in add to the
// total. The checked-in state follows the last index carrying any event: a
// check-in there with no check-out at the same index leaves the employee in.
// Unreadable values count as missing.
func Summarize(row *RawRow) DayFacts {
	var facts DayFacts
	if row == nil {
		return facts
	}

	for _, ev := range row.OrderedEvents() {
		in, inErr := ParseTimeOfDay(ev.CheckIn)
		out, outErr := ParseTimeOfDay(ev.CheckOut)
		if inErr != nil && !errors.Is(inErr, ErrEmptyTime) {
			facts.SkippedValues++
		}
		if outErr != nil && !errors.Is(outErr, ErrEmptyTime) {
			facts.SkippedValues++
		}

		hasIn := inErr == nil
		hasOut := outErr == nil

		if hasIn {
			if !facts.FirstCheckIn.Valid {
				facts.FirstCheckIn = Some(in)
				facts.FirstCheckInRaw = ev.CheckIn
			}
			facts.IsCheckedIn = true
			facts.HasEvents = true
		}
		if hasOut {
			facts.LastCheckOut = Some(out)
			facts.LastCheckOutRaw = ev.CheckOut
			facts.IsCheckedIn = false
			facts.HasEvents = true
		}
		if hasIn && hasOut && out.After(in) {
			facts.TotalWork += out.Sub(in)
		}
	}

	return facts
}

// ClassifyDay derives the coarse status of one employee-day.
//
// Precedence: future dates, then holidays, then the pair facts. A day with
// no worked time and no open check-in falls back to the summary hint, which
// can only ever mark the day absent.
func (c *Classifier) ClassifyDay(row *RawRow, date, now time.Time, hint Hint) DayAttendance {
	day := DayAttendance{
		Date:    dateutil.StartOfDay(date),
		IsToday: dateutil.IsSameDay(date, now),
		Hint:    hint,
	}

	if dateutil.IsAfterDay(date, now) {
		day.Status = StatusFuture
		return day
	}
	if c.IsHoliday(date) {
		day.Status = StatusHoliday
		return day
	}

	day.DayFacts = Summarize(row)

	switch {
	case day.IsCheckedIn:
		day.Status = StatusCheckedIn
	case day.TotalWork > 0 && day.TotalWork < c.rules.HalfDayBelow:
		day.Status = StatusHalfDay
	case day.TotalWork > 0:
		day.Status = StatusPresent
	case hint == HintAbsent || hint == HintPresent:
		day.Status = StatusAbsent
	default:
		day.Status = StatusNoRecord
	}

	return day
}
