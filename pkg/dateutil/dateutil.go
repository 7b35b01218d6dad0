package dateutil

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the calendar date form used by the attendance sheets
	DateLayout = "2006-01-02"
	// MonthLayout is the month key form used by the monthly log endpoint
	MonthLayout = "2006-01"
)

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfMonth returns the first day of the month for the given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// IsSameMonth returns true if two dates are in the same calendar month
func IsSameMonth(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() && date1.Month() == date2.Month()
}

// IsAfterDay reports whether date falls on a calendar day strictly after ref.
// Only the year/month/day of each value are compared.
func IsAfterDay(date, ref time.Time) bool {
	if date.Year() != ref.Year() {
		return date.Year() > ref.Year()
	}
	if date.Month() != ref.Month() {
		return date.Month() > ref.Month()
	}
	return date.Day() > ref.Day()
}

// FormatDate formats date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// FormatMonth formats date as YYYY-MM
func FormatMonth(date time.Time) string {
	return date.Format(MonthLayout)
}

// ParseDate parses date string in various formats into loc
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	formats := []string{
		DateLayout,
		"02.01.2006",
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, dateStr, loc); err == nil {
			return StartOfDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", dateStr)
}

// ParseMonth parses a YYYY-MM string into the first day of that month in loc
func ParseMonth(monthStr string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, monthStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised month %q: %w", monthStr, err)
	}
	return t, nil
}

// MonthDays returns every calendar day of the month containing date
func MonthDays(date time.Time) []time.Time {
	first := StartOfMonth(date)
	n := DaysInMonth(first.Year(), first.Month())

	days := make([]time.Time, 0, n)
	for d := 0; d < n; d++ {
		days = append(days, first.AddDate(0, 0, d))
	}
	return days
}

// Today returns today's date (start of day) in loc
func Today(loc *time.Location) time.Time {
	return StartOfDay(time.Now().In(loc))
}
