package dateutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	input := time.Date(2025, 1, 15, 14, 30, 45, 123456789, time.UTC)
	expected := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	result := StartOfDay(input)

	if !result.Equal(expected) {
		t.Errorf("StartOfDay(%v) = %v, want %v", input, result, expected)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		want  int
	}{
		{"November", 2025, time.November, 30},
		{"December", 2025, time.December, 31},
		{"February non-leap", 2025, time.February, 28},
		{"February leap", 2024, time.February, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysInMonth(tt.year, tt.month); got != tt.want {
				t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestIsAfterDay(t *testing.T) {
	ref := time.Date(2025, 11, 15, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"Same day earlier time", time.Date(2025, 11, 15, 1, 0, 0, 0, time.UTC), false},
		{"Same day later time", time.Date(2025, 11, 15, 23, 59, 59, 0, time.UTC), false},
		{"Next day", time.Date(2025, 11, 16, 0, 0, 0, 0, time.UTC), true},
		{"Previous day", time.Date(2025, 11, 14, 0, 0, 0, 0, time.UTC), false},
		{"Next month lower day", time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"Previous year higher month", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAfterDay(tt.date, ref); got != tt.want {
				t.Errorf("IsAfterDay(%v, %v) = %v, want %v",
					tt.date.Format("2006-01-02"), ref.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestIsSameDay(t *testing.T) {
	tests := []struct {
		name  string
		date1 time.Time
		date2 time.Time
		want  bool
	}{
		{
			"Same date different time",
			time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC),
			true,
		},
		{
			"Different date",
			time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 16, 10, 0, 0, 0, time.UTC),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsSameDay(tt.date1, tt.date2)

			if result != tt.want {
				t.Errorf("IsSameDay(%v, %v) = %v, want %v",
					tt.date1, tt.date2, result, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			"ISO format YYYY-MM-DD",
			"2025-01-15",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"Dotted format DD.MM.YYYY",
			"15.01.2025",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"ISO with time truncated to day",
			"2025-01-15T10:30:00",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"Garbage",
			"yesterday",
			time.Time{},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDate(tt.input, time.UTC)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if !tt.wantErr && !result.Equal(tt.want) {
				t.Errorf("ParseDate(%v) = %v, want %v", tt.input, result, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2025-11", time.UTC)
	if err != nil {
		t.Fatalf("ParseMonth() error = %v", err)
	}
	want := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseMonth(2025-11) = %v, want %v", got, want)
	}

	if _, err := ParseMonth("2025/11", time.UTC); err == nil {
		t.Error("ParseMonth(2025/11) expected error, got nil")
	}
}

func TestMonthDays(t *testing.T) {
	days := MonthDays(time.Date(2025, 11, 17, 12, 0, 0, 0, time.UTC))

	if len(days) != 30 {
		t.Fatalf("MonthDays() len = %d, want 30", len(days))
	}
	if days[0].Day() != 1 || days[29].Day() != 30 {
		t.Errorf("MonthDays() bounds = %v .. %v, want 1 .. 30", days[0].Day(), days[29].Day())
	}
	if days[0].Hour() != 0 {
		t.Errorf("MonthDays() first day hour = %d, want 0", days[0].Hour())
	}
}
