package attendance

import (
	"time"

	"github.com/username/attendance-dashboard/pkg/dateutil"
)

// Cutoff returns the last day of month that is processed relative to now.
// ok is false when the whole month lies in the future.
func Cutoff(month, now time.Time) (cutoff time.Time, ok bool) {
	first := dateutil.StartOfMonth(month)
	last := first.AddDate(0, 1, -1)

	today := dateutil.StartOfDay(now.In(first.Location()))
	switch {
	case today.Before(first):
		return time.Time{}, false
	case today.After(last):
		return last, true
	default:
		return today, true
	}
}

// DaysToFetch lists the working days of month up to the processing cutoff.
// These are the days a caller needs daily records for.
func (c *Classifier) DaysToFetch(month, now time.Time) []time.Time {
	cutoff, ok := Cutoff(month, now)
	if !ok {
		return nil
	}

	var days []time.Time
	for _, day := range dateutil.MonthDays(month) {
		if day.After(cutoff) {
			break
		}
		if c.IsHoliday(day) {
			continue
		}
		days = append(days, day)
	}
	return days
}

// FoldMonth classifies every calendar day of month for one employee.
//
// rows maps YYYY-MM-DD to the employee's daily record; a missing key means
// no record was found or the day could not be retrieved. Both degrade to the
// hint fallback for that day only.
func (c *Classifier) FoldMonth(entry RosterEntry, month, now time.Time, rows map[string]*RawRow) MonthAttendance {
	result := MonthAttendance{
		UID:   entry.UID,
		Name:  entry.Name,
		Month: dateutil.StartOfMonth(month),
	}

	days := dateutil.MonthDays(month)
	result.Days = make([]DayAttendance, 0, len(days))
	for _, date := range days {
		key := dateutil.FormatDate(date)
		day := c.ClassifyDay(rows[key], date, now, entry.HintFor(date))
		result.Summary.Add(day)
		result.Days = append(result.Days, day)
	}

	return result
}
