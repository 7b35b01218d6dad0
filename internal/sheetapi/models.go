package sheetapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/username/attendance-dashboard/internal/attendance"
)

var (
	checkColumnRe = regexp.MustCompile(`(?i)^check[\s_-]*(in|out)[\s_-]*(\d+)$`)
	dateKeyRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// envelope is the response wrapper used by every sheet endpoint
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error,omitempty"`
	SheetName string          `json:"sheetName,omitempty"`
}

// FlexibleID handles both string and number IDs from the sheet.
// UID cells typed as numbers arrive as JSON numbers, others as strings.
type FlexibleID string

// UnmarshalJSON implements json.Unmarshaler for FlexibleID
func (f *FlexibleID) UnmarshalJSON(b []byte) error {
	// Try to unmarshal as string first
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexibleID(strings.TrimSpace(s))
		return nil
	}

	// Try as number, keeping its literal form
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			*f = FlexibleID(strconv.FormatInt(i, 10))
			return nil
		}
		*f = FlexibleID(n.String())
		return nil
	}

	if string(b) == "null" {
		*f = ""
		return nil
	}

	return fmt.Errorf("FlexibleID: cannot unmarshal %s", string(b))
}

// String returns string representation
func (f FlexibleID) String() string {
	return string(f)
}

// orderedObject is a JSON object with its keys in document order
type orderedObject struct {
	keys   []string
	values map[string]json.RawMessage
}

func decodeOrderedObject(raw json.RawMessage) (orderedObject, error) {
	obj := orderedObject{values: make(map[string]json.RawMessage)}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return obj, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return obj, fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return obj, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return obj, fmt.Errorf("expected object key, got %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return obj, fmt.Errorf("failed to decode %q: %w", key, err)
		}
		if _, dup := obj.values[key]; !dup {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = value
	}

	if _, err := dec.Token(); err != nil {
		return obj, err
	}
	return obj, nil
}

// stringValue returns the cell as a string when it is a JSON string
func (o orderedObject) stringValue(key string) (string, bool) {
	raw, ok := o.values[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// scalarValue renders any scalar cell as text. Null, objects and arrays are empty.
func (o orderedObject) scalarValue(key string) string {
	raw, ok := o.values[key]
	if !ok {
		return ""
	}
	if s, ok := o.stringValue(key); ok {
		return s
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch val := v.(type) {
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

func (o orderedObject) uid() string {
	raw, ok := o.values["UID"]
	if !ok {
		return ""
	}
	var id FlexibleID
	if err := json.Unmarshal(raw, &id); err != nil {
		return ""
	}
	return id.String()
}

func (o orderedObject) name() string {
	return strings.TrimSpace(o.scalarValue("Name"))
}

func decodeObjects(data json.RawMessage) ([]orderedObject, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("failed to parse data array: %w", err)
	}

	objects := make([]orderedObject, 0, len(items))
	for i, item := range items {
		obj, err := decodeOrderedObject(item)
		if err != nil {
			return nil, fmt.Errorf("failed to parse row %d: %w", i, err)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// toRawRow collects every Check-in N / Check-out N column into ordered pairs.
// Cells that are not JSON strings are treated as empty.
func (o orderedObject) toRawRow() attendance.RawRow {
	row := attendance.RawRow{
		UID:  o.uid(),
		Name: o.name(),
	}

	pairs := make(map[int]*attendance.CheckEvent)
	for _, key := range o.keys {
		m := checkColumnRe.FindStringSubmatch(strings.TrimSpace(key))
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		value, _ := o.stringValue(key)
		ev, ok := pairs[idx]
		if !ok {
			ev = &attendance.CheckEvent{Index: idx}
			pairs[idx] = ev
		}
		if strings.EqualFold(m[1], "in") {
			ev.CheckIn = value
		} else {
			ev.CheckOut = value
		}
	}

	indices := make([]int, 0, len(pairs))
	for idx := range pairs {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for _, idx := range indices {
		ev := pairs[idx]
		if ev.CheckIn == "" && ev.CheckOut == "" {
			continue
		}
		row.Events = append(row.Events, *ev)
	}
	return row
}

// toRosterEntry reads the employee and every YYYY-MM-DD column as a hint
func (o orderedObject) toRosterEntry() attendance.RosterEntry {
	entry := attendance.RosterEntry{
		UID:  o.uid(),
		Name: o.name(),
	}
	for _, key := range o.keys {
		if !dateKeyRe.MatchString(key) {
			continue
		}
		hint := attendance.ParseHint(o.scalarValue(key))
		if hint == attendance.HintNone {
			continue
		}
		if entry.Hints == nil {
			entry.Hints = make(map[string]attendance.Hint)
		}
		entry.Hints[key] = hint
	}
	return entry
}

// toLogRow keeps all columns in delivered order
func (o orderedObject) toLogRow() attendance.LogRow {
	row := attendance.LogRow{
		Columns: make([]string, len(o.keys)),
		Values:  make(map[string]string, len(o.keys)),
	}
	copy(row.Columns, o.keys)
	for _, key := range o.keys {
		row.Values[key] = o.scalarValue(key)
	}
	if uid := o.uid(); uid != "" {
		row.Values["UID"] = uid
	}
	return row
}
