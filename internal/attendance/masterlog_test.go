package attendance

import (
	"reflect"
	"testing"
)

func logRow(cols []string, vals ...string) LogRow {
	r := LogRow{Columns: cols, Values: make(map[string]string)}
	for i, c := range cols {
		r.Values[c] = vals[i]
	}
	return r
}

func TestMergeLog(t *testing.T) {
	rows := []LogRow{
		logRow([]string{"UID", "Name", "2025-11-01", "2025-11-02"}, "E1", "Asha", "P", "-"),
		logRow([]string{"UID", "Name", "2025-11-02", "Total"}, "E1", "Asha", "A", "12"),
		logRow([]string{"UID", "Name", "2025-11-01"}, "E2", "Bikram", ""),
		logRow([]string{"UID", "Name", "2025-11-01", "Total"}, "E1", "Asha", "L", ""),
		logRow([]string{"UID", "Name"}, "E7", ""),
	}

	got := MergeLog(rows)

	wantCols := []string{"Name", "2025-11-01", "2025-11-02", "Total"}
	if !reflect.DeepEqual(got.Columns, wantCols) {
		t.Errorf("Columns = %v, want %v", got.Columns, wantCols)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(got.Rows))
	}

	asha := got.Rows[0]
	if asha.Name != "Asha" || asha.UID != "E1" {
		t.Errorf("first row = %s/%s, want Asha/E1", asha.Name, asha.UID)
	}
	wantCells := map[string]string{"2025-11-01": "L", "2025-11-02": "A", "Total": "12"}
	if !reflect.DeepEqual(asha.Cells, wantCells) {
		t.Errorf("Asha cells = %v, want %v", asha.Cells, wantCells)
	}

	bikram := got.Rows[1]
	if v := bikram.Cell("2025-11-01"); v != "-" {
		t.Errorf("Bikram 2025-11-01 = %q, want -", v)
	}
	if v := bikram.Cell("Name"); v != "Bikram" {
		t.Errorf("Bikram Name cell = %q", v)
	}
}

func TestNormalizeLogValue(t *testing.T) {
	tests := []struct {
		raw       string
		wantValue string
		wantClass string
	}{
		{"P", "P", "present"},
		{"present", "P", "present"},
		{"a", "A", "absent"},
		{"Holiday", "H", "holiday"},
		{"Leave", "L", "leave"},
		{"Work From Home", "WFH", "wfh"},
		{"Half Day", "HD", "half-day"},
		{"-", "-", ""},
		{"", "-", ""},
		{"8.5", "8.5", ""},
	}

	for _, tt := range tests {
		got := NormalizeLogValue(tt.raw)
		if got.Value != tt.wantValue || got.Class != tt.wantClass {
			t.Errorf("NormalizeLogValue(%q) = %+v, want %s/%s", tt.raw, got, tt.wantValue, tt.wantClass)
		}
	}
}

func TestIsDateColumn(t *testing.T) {
	if !IsDateColumn("2025-11-01") {
		t.Error("IsDateColumn(2025-11-01) = false")
	}
	if IsDateColumn("Total") {
		t.Error("IsDateColumn(Total) = true")
	}
}
