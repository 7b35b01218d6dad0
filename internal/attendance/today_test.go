package attendance

import (
	"math"
	"testing"
)

func testRoster() Roster {
	return Roster{
		{UID: "E1", Name: "Asha Rao"},
		{UID: "E2", Name: "Bikram Singh"},
		{UID: "E3", Name: "Chen Li", Hints: map[string]Hint{"2025-11-17": HintAbsent}},
	}
}

func testDaily() []RawRow {
	return []RawRow{
		{UID: "E1", Name: "Asha Rao", Events: []CheckEvent{pair(1, "09:00:00", "18:00:00")}},
		{UID: "E2", Name: "Bikram Singh", Events: []CheckEvent{pair(1, "10:45:00", "13:00:00"), pair(2, "13:30:00", "16:30:00")}},
		{UID: "E9", Name: "Stranger", Events: []CheckEvent{pair(1, "09:00:00", "18:00:00")}},
	}
}

func TestBuildToday(t *testing.T) {
	c := newTestClassifier()

	view := c.BuildToday(day(2025, 11, 17), evalNow, testRoster(), testDaily(), false)

	want := TodayKPI{Total: 3, Present: 2, Absent: 1, OnTime: 1, Exceptions: 1}
	gotKPI := view.KPI
	gotKPI.AvgHours = 0
	if gotKPI != want {
		t.Errorf("KPI = %+v, want %+v", view.KPI, want)
	}
	// (9h + 5.25h) / 2
	if math.Abs(view.KPI.AvgHours-7.125) > 1e-9 {
		t.Errorf("AvgHours = %v, want 7.125", view.KPI.AvgHours)
	}
	if view.MaxPairs != 2 {
		t.Errorf("MaxPairs = %d, want 2", view.MaxPairs)
	}

	for _, r := range view.Present {
		if r.UID == "E9" {
			t.Error("unknown employee E9 should be dropped")
		}
	}

	if len(view.Absent) != 1 || view.Absent[0].UID != "E3" {
		t.Fatalf("Absent = %+v, want only E3", view.Absent)
	}
	if view.Absent[0].Tier.Tier != TierAbsent {
		t.Errorf("E3 tier = %v, want %v", view.Absent[0].Tier.Tier, TierAbsent)
	}
	if view.Absent[0].Day.Status != StatusAbsent {
		t.Errorf("E3 status = %v, want %v", view.Absent[0].Day.Status, StatusAbsent)
	}
}

func TestTodayView_Rows(t *testing.T) {
	c := newTestClassifier()
	view := c.BuildToday(day(2025, 11, 17), evalNow, testRoster(), testDaily(), false)

	tests := []struct {
		name   string
		filter Filter
		query  string
		want   []string
	}{
		{"Present", FilterPresent, "", []string{"E1", "E2"}},
		{"On time", FilterOnTime, "", []string{"E1"}},
		{"Exceptions", FilterExceptions, "", []string{"E2"}},
		{"Absent", FilterAbsent, "", []string{"E3"}},
		{"All", FilterAll, "", []string{"E1", "E2", "E3"}},
		{"Search lower", FilterAll, "bik", []string{"E2"}},
		{"Search upper", FilterPresent, "ASHA", []string{"E1"}},
		{"Search no match", FilterAll, "zed", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := view.Rows(tt.filter, tt.query)
			if len(rows) != len(tt.want) {
				t.Fatalf("Rows(%v, %q) len = %d, want %d", tt.filter, tt.query, len(rows), len(tt.want))
			}
			for i, r := range rows {
				if r.UID != tt.want[i] {
					t.Errorf("Rows(%v, %q)[%d] = %v, want %v", tt.filter, tt.query, i, r.UID, tt.want[i])
				}
			}
		})
	}
}

func TestBuildToday_Holiday(t *testing.T) {
	c := newTestClassifier()
	sunday := day(2025, 11, 16)

	view := c.BuildToday(sunday, evalNow, testRoster(), testDaily(), false)

	if !view.Holiday {
		t.Fatal("Holiday = false on Sunday")
	}
	if view.KPI.Holiday != 3 || view.KPI.Present != 0 || view.KPI.Absent != 0 {
		t.Errorf("KPI = %+v, want 3 holiday", view.KPI)
	}
	rows := view.Rows(FilterPresent, "")
	if len(rows) != 3 {
		t.Fatalf("Rows() on holiday = %d, want whole roster", len(rows))
	}
	for _, r := range rows {
		if r.Tier.Tier != TierHoliday || r.Day.Status != StatusHoliday {
			t.Errorf("%s = %v/%v, want holiday", r.UID, r.Tier.Tier, r.Day.Status)
		}
	}
}

func TestBuildToday_Degraded(t *testing.T) {
	c := newTestClassifier()

	view := c.BuildToday(day(2025, 11, 17), evalNow, testRoster(), nil, true)

	if !view.Degraded {
		t.Error("Degraded = false, want true")
	}
	if view.KPI.Present != 0 || view.KPI.Absent != 3 || view.KPI.AvgHours != 0 {
		t.Errorf("KPI = %+v, want all absent", view.KPI)
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterPresent, false},
		{"onTime", FilterOnTime, false},
		{"all_roster", FilterAll, false},
		{"exceptions", FilterExceptions, false},
		{"late", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFilter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
