package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/internal/calendar"
	"github.com/username/attendance-dashboard/internal/dashboard"
	"github.com/username/attendance-dashboard/pkg/dateutil"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6C63FF"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e81c11"))
)

// colored renders s in the given hex colour, plain when the colour is empty
func colored(s, color string) string {
	if color == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

// cell pads s to width before styling so ANSI codes do not break alignment.
// Text longer than the column is cut, one space is kept as separator.
func cell(s string, width int) string {
	if r := []rune(s); len(r) > width-1 && width > 1 {
		s = string(r[:width-1])
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

func renderToday(w io.Writer, view *attendance.TodayView, rows []attendance.TodayRow, loc *time.Location) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Attendance %s (%s)", dateutil.FormatDate(view.Date), view.Date.Format("Monday"))))

	switch {
	case view.Holiday:
		fmt.Fprintln(w, colored("Holiday: no attendance expected", "#d1ecf1"))
	case view.Degraded:
		fmt.Fprintln(w, warnStyle.Render("Daily sheet unavailable, showing roster only"))
	}

	k := view.KPI
	fmt.Fprintf(w, "Total %d | Present %d | Absent %d | On time %d | Exceptions %d | Avg %.2f hrs\n\n",
		k.Total, k.Present, k.Absent, k.OnTime, k.Exceptions, k.AvgHours)

	fmt.Fprintln(w, headerStyle.Render(
		cell("UID", 10)+cell("Name", 24)+cell("Status", 12)+cell("First In", 10)+cell("Last Out", 10)+cell("Hours", 8)+"Tier"))
	for _, r := range rows {
		hours := "—"
		if r.Day.TotalWork > 0 {
			hours = fmt.Sprintf("%.2f", r.Day.Hours())
		}
		fmt.Fprintln(w,
			cell(r.UID, 10)+
				cell(r.Name, 24)+
				cell(string(r.Day.Status), 12)+
				cell(attendance.DisplayClock(r.Day.FirstCheckInRaw, loc), 10)+
				cell(attendance.DisplayClock(r.Day.LastCheckOutRaw, loc), 10)+
				cell(hours, 8)+
				colored(r.Tier.Label, r.Tier.Color))
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No rows"))
	}
}

func renderMonth(w io.Writer, m *dashboard.EmployeeMonth, loc *time.Location) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%s) %s", m.Name, m.UID, m.Month.Format("January 2006"))))
	fmt.Fprintf(w, "Present %d | Half Day %d | Absent %d\n\n", m.Summary.Present, m.Summary.HalfDay, m.Summary.Absent)

	fmt.Fprintln(w, headerStyle.Render(
		cell("Date", 12)+cell("Day", 5)+cell("", 5)+cell("Status", 12)+cell("First In", 10)+cell("Last Out", 10)+"Hours"))
	for _, d := range m.Days {
		hours := ""
		if d.TotalWork > 0 {
			hours = fmt.Sprintf("%.2f", d.Hours())
		}
		label := colored(cell(d.Status.ShortLabel(), 5), statusColor(d.Status))
		line := cell(dateutil.FormatDate(d.Date), 12) +
			cell(d.Date.Format("Mon"), 5) +
			label +
			cell(string(d.Status), 12) +
			cell(attendance.DisplayClock(d.FirstCheckInRaw, loc), 10) +
			cell(attendance.DisplayClock(d.LastCheckOutRaw, loc), 10) +
			hours
		if d.IsToday {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		fmt.Fprintln(w, line)
	}

	if len(m.FailedDays) > 0 {
		fmt.Fprintln(w, warnStyle.Render("\nUnavailable days: "+strings.Join(m.FailedDays, ", ")))
	}
}

func renderLog(w io.Writer, v *dashboard.MasterLogView) {
	fmt.Fprintln(w, titleStyle.Render("Master log "+dateutil.FormatMonth(v.Month)))
	if len(v.Rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No rows"))
		return
	}

	widths := make([]int, len(v.Columns))
	var header strings.Builder
	for i, col := range v.Columns {
		widths[i] = 5
		if col == "Name" {
			widths[i] = 24
		} else if attendance.IsDateColumn(col) {
			col = col[len(col)-2:]
		} else {
			widths[i] = 12
		}
		header.WriteString(cell(col, widths[i]))
	}
	fmt.Fprintln(w, headerStyle.Render(header.String()))

	for _, r := range v.Rows {
		var line strings.Builder
		for i, col := range v.Columns {
			if col == "Name" {
				line.WriteString(cell(r.Name, widths[i]))
				continue
			}
			c := attendance.NormalizeLogValue(r.Cell(col))
			line.WriteString(colored(cell(c.Value, widths[i]), c.Color))
		}
		fmt.Fprintln(w, line.String())
	}
}

func renderCalendar(w io.Writer, info *calendar.MonthInfo) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s %d", info.Month, info.Year)))
	fmt.Fprintf(w, "Working %d | Rest %d | Festival %d\n", info.WorkDays, info.RestDays, info.Festivals)
	if working := info.WorkingDays(); len(working) > 0 {
		fmt.Fprintf(w, "First working day %s, last %s\n", dateutil.FormatDate(working[0]), dateutil.FormatDate(working[len(working)-1]))
	}
	fmt.Fprintln(w)
	for _, d := range info.Days {
		line := cell(dateutil.FormatDate(d.Date), 12) + cell(d.Date.Format("Mon"), 5) + cell(d.Type.String(), 10) + d.Note
		if !d.IsWorkday {
			line = mutedStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

func statusColor(s attendance.Status) string {
	switch s {
	case attendance.StatusPresent, attendance.StatusCheckedIn:
		return "#28d751"
	case attendance.StatusHalfDay:
		return "#26e6d9"
	case attendance.StatusAbsent:
		return "#e81c11"
	case attendance.StatusHoliday:
		return "#d1ecf1"
	default:
		return ""
	}
}
