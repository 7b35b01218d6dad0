package attendance

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/username/attendance-dashboard/pkg/dateutil"
)

// Filter selects rows of the today view
type Filter string

const (
	FilterPresent    Filter = "present"
	FilterOnTime     Filter = "onTime"
	FilterExceptions Filter = "exceptions"
	FilterAbsent     Filter = "absent"
	FilterAll        Filter = "all"
)

// ParseFilter validates a filter name. Empty selects present rows.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.TrimSpace(s)) {
	case "", FilterPresent:
		return FilterPresent, nil
	case FilterOnTime:
		return FilterOnTime, nil
	case FilterExceptions:
		return FilterExceptions, nil
	case FilterAbsent:
		return FilterAbsent, nil
	case FilterAll, "all_roster":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// TodayRow is one employee line of the today view
type TodayRow struct {
	UID     string        `json:"uid"`
	Name    string        `json:"name"`
	Present bool          `json:"present"`
	Day     DayAttendance `json:"day"`
	Tier    TierInfo      `json:"tier"`
	Events  []CheckEvent  `json:"events,omitempty"`
}

// TodayKPI holds the headline counters of the today view
type TodayKPI struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Holiday    int     `json:"holiday"`
	OnTime     int     `json:"onTime"`
	Exceptions int     `json:"exceptions"`
	AvgHours   float64 `json:"avgHours"`
}

// TodayView is the operational view of one date
type TodayView struct {
	Date      time.Time  `json:"date"`
	Holiday   bool       `json:"holiday"`
	Degraded  bool       `json:"degraded"`
	MaxPairs  int        `json:"maxPairs"`
	Present   []TodayRow `json:"present"`
	Absent    []TodayRow `json:"absent"`
	KPI       TodayKPI   `json:"kpi"`
	Generated time.Time  `json:"generated"`
}

// BuildToday assembles the today view from the roster and the day's records.
//
// daily may be nil when the day could not be retrieved; the view is then
// marked degraded and every roster member is listed as absent. Records whose
// UID is not on the roster are dropped.
func (c *Classifier) BuildToday(date, now time.Time, roster Roster, daily []RawRow, degraded bool) TodayView {
	view := TodayView{
		Date:      dateutil.StartOfDay(date),
		Degraded:  degraded,
		Generated: now,
	}
	view.KPI.Total = len(roster)

	if c.IsHoliday(date) {
		view.Holiday = true
		view.Degraded = false
		holiday := c.tierInfo(TierHoliday)
		for _, e := range roster {
			view.Absent = append(view.Absent, TodayRow{
				UID:  e.UID,
				Name: e.Name,
				Day:  c.ClassifyDay(nil, date, now, e.HintFor(date)),
				Tier: holiday,
			})
		}
		view.KPI.Holiday = len(roster)
		return view
	}

	known := make(map[string]RosterEntry, len(roster))
	for _, e := range roster {
		known[e.UID] = e
	}

	seen := make(map[string]bool, len(daily))
	var totalHours float64
	for i := range daily {
		row := &daily[i]
		entry, ok := known[row.UID]
		if !ok || seen[row.UID] {
			continue
		}
		seen[row.UID] = true

		name := row.Name
		if name == "" {
			name = entry.Name
		}
		day := c.ClassifyDay(row, date, now, entry.HintFor(date))
		tier := c.ClassifyTier(day.DayFacts)

		view.Present = append(view.Present, TodayRow{
			UID:     row.UID,
			Name:    name,
			Present: true,
			Day:     day,
			Tier:    tier,
			Events:  row.OrderedEvents(),
		})
		if n := maxIndex(row.Events); n > view.MaxPairs {
			view.MaxPairs = n
		}

		totalHours += day.Hours()
		if day.CheckedOut() {
			if tier.Tier == TierCompleted {
				view.KPI.OnTime++
			} else {
				view.KPI.Exceptions++
			}
		}
	}

	absent := c.tierInfo(TierAbsent)
	for _, e := range roster {
		if seen[e.UID] {
			continue
		}
		view.Absent = append(view.Absent, TodayRow{
			UID:  e.UID,
			Name: e.Name,
			Day:  c.ClassifyDay(nil, date, now, e.HintFor(date)),
			Tier: absent,
		})
	}

	view.KPI.Present = len(view.Present)
	view.KPI.Absent = len(view.Absent)
	if view.KPI.Present > 0 {
		view.KPI.AvgHours = totalHours / float64(view.KPI.Present)
	}

	return view
}

// Rows returns the rows selected by filter whose name contains query,
// compared case-insensitively. On holidays every roster row is returned.
func (v TodayView) Rows(filter Filter, query string) []TodayRow {
	var rows []TodayRow
	switch {
	case v.Holiday:
		rows = v.Absent
	case filter == FilterAbsent:
		rows = v.Absent
	case filter == FilterAll:
		rows = append(append(rows, v.Present...), v.Absent...)
	case filter == FilterOnTime:
		for _, r := range v.Present {
			if r.Day.CheckedOut() && r.Tier.Tier == TierCompleted {
				rows = append(rows, r)
			}
		}
	case filter == FilterExceptions:
		for _, r := range v.Present {
			if r.Day.CheckedOut() && r.Tier.Tier != TierCompleted {
				rows = append(rows, r)
			}
		}
	default:
		rows = v.Present
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}

	fold := cases.Fold()
	needle := fold.String(query)
	var matched []TodayRow
	for _, r := range rows {
		if strings.Contains(fold.String(r.Name), needle) {
			matched = append(matched, r)
		}
	}
	return matched
}

func maxIndex(events []CheckEvent) int {
	max := 0
	for _, ev := range events {
		if ev.Index > max {
			max = ev.Index
		}
	}
	return max
}
