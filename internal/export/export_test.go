package export

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/username/attendance-dashboard/internal/attendance"
)

func testMonth() attendance.MonthAttendance {
	c := attendance.NewClassifier(attendance.DefaultRules(), nil)
	now := time.Date(2025, 11, 4, 12, 0, 0, 0, time.UTC)
	rows := map[string]*attendance.RawRow{
		"2025-11-03": {UID: "E1", Events: []attendance.CheckEvent{{Index: 1, CheckIn: "09:05:00", CheckOut: "2025-11-03T12:35:00Z"}}},
	}
	entry := attendance.RosterEntry{UID: "E1", Name: "Asha"}
	return c.FoldMonth(entry, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), now, rows)
}

func TestWriteMonthCSV(t *testing.T) {
	var buf bytes.Buffer
	ist := time.FixedZone("IST", 5*3600+1800)
	if err := WriteMonthCSV(&buf, testMonth(), ist); err != nil {
		t.Fatalf("WriteMonthCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 31 {
		t.Fatalf("records = %d, want header + 30 days", len(records))
	}

	want := []string{"2025-11-03", "Mon", "Half Day", "3.50", "09:05:00", "18:05:00"}
	for i, v := range want {
		if records[3][i] != v {
			t.Errorf("record[3][%d] = %q, want %q", i, records[3][i], v)
		}
	}
	if records[30][2] != string(attendance.StatusFuture) || records[30][3] != "" {
		t.Errorf("last day = %v, want Future with no hours", records[30])
	}
}

func TestWriteMonthXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMonthXLSX(&buf, testMonth(), time.UTC); err != nil {
		t.Fatalf("WriteMonthXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	tests := []struct {
		cell string
		want string
	}{
		{"A1", "ATTENDANCE REPORT"},
		{"A2", "Name: Asha (E1)"},
		{"A3", "Month: November 2025"},
		{"A5", "Date"},
		{"F5", "Last Out"},
		{"A8", "2025-11-03"},
		{"C8", "Half Day"},
		{"A37", "Present"},
		{"B38", "1"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue(monthSheet, tt.cell)
		if err != nil || got != tt.want {
			t.Errorf("GetCellValue(%s) = %q, %v, want %q", tt.cell, got, err, tt.want)
		}
	}
}

func TestWriteLogXLSX(t *testing.T) {
	log := attendance.MasterLog{
		Columns: []string{"Name", "Dept", "2025-11-03"},
		Rows: []attendance.MasterLogRow{
			{UID: "E1", Name: "Asha", Cells: map[string]string{"Dept": "Ops", "2025-11-03": "present"}},
			{UID: "E2", Name: "Bikram", Cells: map[string]string{}},
		},
	}

	path := filepath.Join(t.TempDir(), "log.xlsx")
	err := SaveFile(path, func(w io.Writer) error {
		return WriteLogXLSX(w, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), log)
	})
	if err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	tests := []struct {
		cell string
		want string
	}{
		{"A1", "MASTER LOG 2025-11"},
		{"C3", "2025-11-03"},
		{"A4", "Asha"},
		{"B4", "Ops"},
		{"C4", "P"},
		{"C5", "-"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue(logSheet, tt.cell)
		if err != nil || got != tt.want {
			t.Errorf("GetCellValue(%s) = %q, %v, want %q", tt.cell, got, err, tt.want)
		}
	}
}
