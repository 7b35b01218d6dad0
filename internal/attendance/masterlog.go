package attendance

import (
	"regexp"
	"strings"
)

const (
	logUIDColumn  = "UID"
	logNameColumn = "Name"
)

var dateColumnRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// LogRow is one raw row of the monthly log with its columns in delivered order
type LogRow struct {
	Columns []string
	Values  map[string]string
}

// Get returns the value of column, empty when missing
func (r LogRow) Get(column string) string {
	return r.Values[column]
}

// MasterLogRow is the merged month of one employee
type MasterLogRow struct {
	UID   string            `json:"uid"`
	Name  string            `json:"name"`
	Cells map[string]string `json:"cells"`
}

// MasterLog is the merged monthly log
type MasterLog struct {
	Columns []string       `json:"columns"`
	Rows    []MasterLogRow `json:"rows"`
}

// LogCell is a normalised log value ready for display
type LogCell struct {
	Value string `json:"value"`
	Class string `json:"class,omitempty"`
	Color string `json:"color,omitempty"`
}

// MergeLog groups raw log rows by employee name.
//
// Later non-empty values overwrite earlier ones; "" and "-" never overwrite.
// Visible columns keep their first-appearance order with Name first and UID
// left out. Rows keep the order in which each name first appeared.
func MergeLog(rows []LogRow) MasterLog {
	var log MasterLog
	index := make(map[string]int)
	seenColumn := map[string]bool{logUIDColumn: true, logNameColumn: true}
	log.Columns = []string{logNameColumn}

	for _, raw := range rows {
		name := strings.TrimSpace(raw.Get(logNameColumn))
		if name == "" {
			continue
		}

		i, ok := index[name]
		if !ok {
			i = len(log.Rows)
			index[name] = i
			log.Rows = append(log.Rows, MasterLogRow{
				Name:  name,
				Cells: make(map[string]string),
			})
		}
		merged := &log.Rows[i]

		for _, col := range raw.Columns {
			if !seenColumn[col] {
				seenColumn[col] = true
				log.Columns = append(log.Columns, col)
			}

			value := strings.TrimSpace(raw.Values[col])
			if isEmptyLogValue(value) {
				continue
			}
			switch col {
			case logUIDColumn:
				merged.UID = value
			case logNameColumn:
			default:
				merged.Cells[col] = value
			}
		}
	}

	return log
}

// Cell returns the value of column for display
func (r MasterLogRow) Cell(column string) string {
	if column == logNameColumn {
		return r.Name
	}
	v, ok := r.Cells[column]
	if !ok {
		return "-"
	}
	return v
}

// IsDateColumn reports whether a log column holds a per-day status
func IsDateColumn(column string) bool {
	return dateColumnRe.MatchString(column)
}

// NormalizeLogValue maps a raw log status to its display code, class and colour
func NormalizeLogValue(raw string) LogCell {
	v := strings.TrimSpace(raw)
	switch strings.ToUpper(v) {
	case "P", "PRESENT":
		return LogCell{"P", "present", "#28d751"}
	case "A", "ABSENT":
		return LogCell{"A", "absent", "#e81c11"}
	case "H", "HOL", "HOLIDAY":
		return LogCell{"H", "holiday", "#d1ecf1"}
	case "L", "LEAVE":
		return LogCell{"L", "leave", "#f5f51c"}
	case "WFH", "WORK FROM HOME":
		return LogCell{"WFH", "wfh", "#41ec16"}
	case "HD", "HALF DAY":
		return LogCell{"HD", "half-day", "#26e6d9"}
	case "", "-":
		return LogCell{Value: "-"}
	}
	return LogCell{Value: v}
}

func isEmptyLogValue(v string) bool {
	return v == "" || v == "-"
}
