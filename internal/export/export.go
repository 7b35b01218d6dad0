package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/pkg/dateutil"
)

// MonthColumns is the column set of a month report
var MonthColumns = []string{"Date", "Day", "Status", "Hours", "First In", "Last Out"}

// WriteMonthCSV writes one employee's month as CSV, one line per calendar day
func WriteMonthCSV(w io.Writer, m attendance.MonthAttendance, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MonthColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, day := range m.Days {
		if err := cw.Write(monthRecord(day, loc)); err != nil {
			return fmt.Errorf("failed to write %s: %w", dateutil.FormatDate(day.Date), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveFile creates path and fills it with write
func SaveFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func monthRecord(day attendance.DayAttendance, loc *time.Location) []string {
	return []string{
		dateutil.FormatDate(day.Date),
		day.Date.Format("Mon"),
		string(day.Status),
		hoursCell(day),
		clockCell(day.FirstCheckInRaw, loc),
		clockCell(day.LastCheckOutRaw, loc),
	}
}

func hoursCell(day attendance.DayAttendance) string {
	if day.TotalWork <= 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", day.Hours())
}

func clockCell(raw string, loc *time.Location) string {
	if raw == "" {
		return ""
	}
	return attendance.DisplayClock(raw, loc)
}
