package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/username/attendance-dashboard/internal/attendance"
	"github.com/username/attendance-dashboard/pkg/dateutil"
)

const (
	monthSheet  = "Attendance"
	logSheet    = "Master Log"
	headerColor = "#4472C4"
)

// WriteMonthXLSX writes one employee's month as a workbook with a title
// block, the daily table and a summary block
func WriteMonthXLSX(w io.Writer, m attendance.MonthAttendance, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", monthSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	last, _ := excelize.ColumnNumberToName(len(MonthColumns))
	f.SetCellValue(monthSheet, "A1", "ATTENDANCE REPORT")
	f.MergeCell(monthSheet, "A1", last+"1")
	f.SetCellStyle(monthSheet, "A1", last+"1", header)
	f.SetRowHeight(monthSheet, 1, 25)
	f.SetCellValue(monthSheet, "A2", fmt.Sprintf("Name: %s (%s)", m.Name, m.UID))
	f.SetCellValue(monthSheet, "A3", fmt.Sprintf("Month: %s", m.Month.Format("January 2006")))

	const tableRow = 5
	if err := writeRow(f, monthSheet, tableRow, MonthColumns); err != nil {
		return err
	}
	f.SetCellStyle(monthSheet, "A5", fmt.Sprintf("%s%d", last, tableRow), header)

	row := tableRow + 1
	for _, day := range m.Days {
		if err := writeRow(f, monthSheet, row, monthRecord(day, loc)); err != nil {
			return err
		}
		row++
	}

	row++
	summary := [][]string{
		{"Present", fmt.Sprint(m.Summary.Present)},
		{"Half Day", fmt.Sprint(m.Summary.HalfDay)},
		{"Absent", fmt.Sprint(m.Summary.Absent)},
	}
	for _, s := range summary {
		if err := writeRow(f, monthSheet, row, s); err != nil {
			return err
		}
		row++
	}

	f.SetColWidth(monthSheet, "A", "A", 12)
	f.SetColWidth(monthSheet, "B", "B", 8)
	f.SetColWidth(monthSheet, "C", "C", 14)
	f.SetColWidth(monthSheet, "D", "F", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteLogXLSX writes the merged master log with its columns in order.
// Status cells are normalised and filled with their display colour.
func WriteLogXLSX(w io.Writer, month time.Time, log attendance.MasterLog) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", logSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	if len(log.Columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(log.Columns))
		f.SetCellValue(logSheet, "A1", fmt.Sprintf("MASTER LOG %s", dateutil.FormatMonth(month)))
		f.MergeCell(logSheet, "A1", last+"1")
		f.SetCellStyle(logSheet, "A1", last+"1", header)

		if err := writeRow(f, logSheet, 3, log.Columns); err != nil {
			return err
		}
		f.SetCellStyle(logSheet, "A3", last+"3", header)
		f.SetColWidth(logSheet, "A", "A", 24)
	}

	fills := make(map[string]int)
	for i, r := range log.Rows {
		rowNum := i + 4
		for j, col := range log.Columns {
			cell, _ := excelize.CoordinatesToCellName(j+1, rowNum)
			if col == "Name" {
				f.SetCellValue(logSheet, cell, r.Name)
				continue
			}
			norm := attendance.NormalizeLogValue(r.Cell(col))
			f.SetCellValue(logSheet, cell, norm.Value)
			if norm.Color == "" {
				continue
			}
			style, ok := fills[norm.Color]
			if !ok {
				style, err = f.NewStyle(&excelize.Style{
					Fill:      excelize.Fill{Type: "pattern", Color: []string{norm.Color}, Pattern: 1},
					Alignment: &excelize.Alignment{Horizontal: "center"},
				})
				if err != nil {
					return fmt.Errorf("failed to create style: %w", err)
				}
				fills[norm.Color] = style
			}
			f.SetCellStyle(logSheet, cell, cell, style)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func headerStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	return style, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
