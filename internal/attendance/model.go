package attendance

import (
	"sort"
	"strings"
	"time"

	"github.com/username/attendance-dashboard/pkg/dateutil"
)

// CheckEvent is one check-in/check-out pair of a day record.
// Either side may be empty.
type CheckEvent struct {
	Index    int    `json:"index"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
}

// RawRow is one employee's record for a single day as delivered by the sheet
type RawRow struct {
	UID    string       `json:"uid"`
	Name   string       `json:"name"`
	Events []CheckEvent `json:"events"`
}

// OrderedEvents returns the events sorted by pair index
func (r *RawRow) OrderedEvents() []CheckEvent {
	if r == nil {
		return nil
	}
	events := make([]CheckEvent, len(r.Events))
	copy(events, r.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Index < events[j].Index
	})
	return events
}

// FindRow returns the row of uid among rows
func FindRow(rows []RawRow, uid string) (*RawRow, error) {
	for i := range rows {
		if rows[i].UID == uid {
			return &rows[i], nil
		}
	}
	return nil, ErrMissingRecord
}

// Hint is the coarse per-day status carried by the summary sheet
type Hint string

const (
	HintNone    Hint = ""
	HintPresent Hint = "P"
	HintAbsent  Hint = "A"
)

// ParseHint normalises a summary cell into a Hint.
// Values other than present/absent are kept verbatim and ignored by classification.
func ParseHint(raw string) Hint {
	s := strings.TrimSpace(raw)
	switch strings.ToUpper(s) {
	case "":
		return HintNone
	case "P", "PRESENT":
		return HintPresent
	case "A", "ABSENT":
		return HintAbsent
	}
	return Hint(s)
}

// Status is the coarse classification of one employee-day
type Status string

const (
	StatusPresent   Status = "Present"
	StatusHalfDay   Status = "Half Day"
	StatusCheckedIn Status = "Checked In"
	StatusAbsent    Status = "Absent"
	StatusHoliday   Status = "Holiday"
	StatusNoRecord  Status = "NoRecord"
	StatusFuture    Status = "Future"
)

// CountsAsPresent reports whether the status adds to the present total
func (s Status) CountsAsPresent() bool {
	return s == StatusPresent || s == StatusCheckedIn
}

// ShortLabel is the one or two letter form used in calendar cells
func (s Status) ShortLabel() string {
	switch s {
	case StatusPresent, StatusCheckedIn:
		return "P"
	case StatusHalfDay:
		return "H"
	case StatusAbsent:
		return "A"
	case StatusHoliday:
		return "HOL"
	case StatusFuture:
		return "F"
	}
	return "-"
}

// DayFacts are the duration and time facts extracted from a day's pairs
type DayFacts struct {
	TotalWork       time.Duration `json:"totalWork"`
	FirstCheckIn    OptionalTime  `json:"firstCheckIn"`
	LastCheckOut    OptionalTime  `json:"lastCheckOut"`
	FirstCheckInRaw string        `json:"-"`
	LastCheckOutRaw string        `json:"-"`
	IsCheckedIn     bool          `json:"isCheckedIn"`
	HasEvents       bool          `json:"hasEvents"`
	SkippedValues   int           `json:"skippedValues,omitempty"`
}

// Hours returns TotalWork in fractional hours
func (f DayFacts) Hours() float64 {
	return f.TotalWork.Hours()
}

// CheckedOut reports whether the day has events and the last one closed a pair
func (f DayFacts) CheckedOut() bool {
	return f.HasEvents && !f.IsCheckedIn
}

// DayAttendance is the classified result for one employee-day
type DayAttendance struct {
	Date    time.Time `json:"date"`
	Status  Status    `json:"status"`
	IsToday bool      `json:"isToday"`
	Hint    Hint      `json:"hint,omitempty"`
	DayFacts
}

// MonthSummary counts classified days of one month
type MonthSummary struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	HalfDay int `json:"halfDay"`
}

// Add folds one day into the counts
func (m *MonthSummary) Add(day DayAttendance) {
	switch {
	case day.Status.CountsAsPresent():
		m.Present++
	case day.Status == StatusAbsent:
		m.Absent++
	case day.Status == StatusHalfDay:
		m.HalfDay++
	}
}

// MonthAttendance is one employee's classified month
type MonthAttendance struct {
	UID     string          `json:"uid"`
	Name    string          `json:"name"`
	Month   time.Time       `json:"month"`
	Days    []DayAttendance `json:"days"`
	Summary MonthSummary    `json:"summary"`
}

// RosterEntry is one employee from the summary sheet
type RosterEntry struct {
	UID   string          `json:"uid"`
	Name  string          `json:"name"`
	Hints map[string]Hint `json:"hints,omitempty"`
}

// HintFor returns the hint stored for date, keyed by YYYY-MM-DD
func (e RosterEntry) HintFor(date time.Time) Hint {
	if e.Hints == nil {
		return HintNone
	}
	return e.Hints[dateutil.FormatDate(date)]
}

// Roster is the ordered list of employees
type Roster []RosterEntry

// Lookup finds an employee by UID
func (r Roster) Lookup(uid string) (RosterEntry, error) {
	for _, e := range r {
		if e.UID == uid {
			return e, nil
		}
	}
	return RosterEntry{}, ErrUnknownEmployee
}
