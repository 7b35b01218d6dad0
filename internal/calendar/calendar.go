package calendar

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/username/attendance-dashboard/pkg/dateutil"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeRestDay
	DayTypeFestival
)

func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeRestDay:
		return "rest day"
	case DayTypeFestival:
		return "festival"
	}
	return "unknown"
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date      time.Time
	Type      DayType
	IsWorkday bool
	Note      string
}

// MonthInfo represents calendar information for a month
type MonthInfo struct {
	Year      int
	Month     time.Month
	WorkDays  int
	RestDays  int
	Festivals int
	Days      []DayInfo
}

// WorkingDays returns the dates of the working days in the month
func (m *MonthInfo) WorkingDays() []time.Time {
	var days []time.Time
	for _, d := range m.Days {
		if d.IsWorkday {
			days = append(days, d.Date)
		}
	}
	return days
}

// Festival is a fixed non-working date
type Festival struct {
	Date time.Time
	Name string
}

// HolidayCalendar marks a weekly rest day and a set of festival dates as holidays
type HolidayCalendar struct {
	restDay   time.Weekday
	festivals map[string]string // key: "YYYY-MM-DD", value: name
	logger    *zap.Logger
}

// New creates a HolidayCalendar
func New(restDay time.Weekday, festivals []Festival, logger *zap.Logger) *HolidayCalendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	hc := &HolidayCalendar{
		restDay:   restDay,
		festivals: make(map[string]string, len(festivals)),
		logger:    logger,
	}
	hc.AddFestivals(festivals)
	return hc
}

// ParseFestivals turns YYYY-MM-DD strings into festivals
func ParseFestivals(dates []string) ([]Festival, error) {
	festivals := make([]Festival, 0, len(dates))
	for _, s := range dates {
		date, err := time.Parse(dateutil.DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid festival date %q: %w", s, err)
		}
		festivals = append(festivals, Festival{Date: date})
	}
	return festivals, nil
}

// AddFestivals merges festivals into the calendar. Named entries replace unnamed ones.
func (hc *HolidayCalendar) AddFestivals(festivals []Festival) {
	for _, f := range festivals {
		key := dateutil.FormatDate(f.Date)
		if existing, ok := hc.festivals[key]; ok {
			hc.logger.Debug("Festival date listed twice", zap.String("date", key))
			if f.Name == "" {
				f.Name = existing
			}
		}
		hc.festivals[key] = f.Name
	}
}

// RestDay returns the weekly rest day
func (hc *HolidayCalendar) RestDay() time.Weekday {
	return hc.restDay
}

// Festivals returns the configured festival dates in ascending order
func (hc *HolidayCalendar) Festivals() []string {
	dates := make([]string, 0, len(hc.festivals))
	for d := range hc.festivals {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// IsHoliday reports whether date is the rest day or a festival.
// Only the calendar date of the value matters, read in its own location.
func (hc *HolidayCalendar) IsHoliday(date time.Time) bool {
	return hc.GetDayInfo(date).Type != DayTypeWorkday
}

// GetDayInfo returns detailed info for a specific day
func (hc *HolidayCalendar) GetDayInfo(date time.Time) DayInfo {
	day := DayInfo{
		Date:      dateutil.StartOfDay(date),
		Type:      DayTypeWorkday,
		IsWorkday: true,
	}

	if name, ok := hc.festivals[dateutil.FormatDate(date)]; ok {
		day.Type = DayTypeFestival
		day.IsWorkday = false
		day.Note = name
		return day
	}
	if date.Weekday() == hc.restDay {
		day.Type = DayTypeRestDay
		day.IsWorkday = false
	}
	return day
}

// GetMonthInfo returns calendar info for the entire month
func (hc *HolidayCalendar) GetMonthInfo(year int, month time.Month, loc *time.Location) *MonthInfo {
	if loc == nil {
		loc = time.UTC
	}
	info := &MonthInfo{
		Year:  year,
		Month: month,
	}

	for _, date := range dateutil.MonthDays(time.Date(year, month, 1, 0, 0, 0, 0, loc)) {
		day := hc.GetDayInfo(date)
		info.Days = append(info.Days, day)

		switch day.Type {
		case DayTypeWorkday:
			info.WorkDays++
		case DayTypeRestDay:
			info.RestDays++
		case DayTypeFestival:
			info.Festivals++
		}
	}

	return info
}
