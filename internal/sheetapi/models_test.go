package sheetapi

import (
	"encoding/json"
	"testing"
)

func TestFlexibleID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"String", `"E101"`, "E101", false},
		{"Padded string", `" E7 "`, "E7", false},
		{"Integer", `101`, "101", false},
		{"Float", `10.5`, "10.5", false},
		{"Null", `null`, "", false},
		{"Object", `{"a":1}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id FlexibleID
			err := json.Unmarshal([]byte(tt.input), &id)

			if (err != nil) != tt.wantErr {
				t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && id.String() != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, id, tt.want)
			}
		})
	}
}

func TestDecodeOrderedObject(t *testing.T) {
	obj, err := decodeOrderedObject(json.RawMessage(`{"b":1,"a":"x","c":{"nested":true}}`))
	if err != nil {
		t.Fatalf("decodeOrderedObject() error = %v", err)
	}

	want := []string{"b", "a", "c"}
	for i, k := range want {
		if obj.keys[i] != k {
			t.Errorf("keys[%d] = %q, want %q", i, obj.keys[i], k)
		}
	}
	if obj.scalarValue("c") != "" {
		t.Errorf("scalarValue(object) = %q, want empty", obj.scalarValue("c"))
	}

	if _, err := decodeOrderedObject(json.RawMessage(`[1,2]`)); err == nil {
		t.Error("decodeOrderedObject(array) expected error")
	}
}

func TestToRawRow_ColumnSpellings(t *testing.T) {
	obj, err := decodeOrderedObject(json.RawMessage(`{"UID":"E1","check_in_1":"09:00","CHECK-OUT 1":"17:00","Checkin3":"18:00"}`))
	if err != nil {
		t.Fatalf("decodeOrderedObject() error = %v", err)
	}

	row := obj.toRawRow()
	if len(row.Events) != 2 {
		t.Fatalf("events = %+v, want 2", row.Events)
	}
	if row.Events[0].CheckIn != "09:00" || row.Events[0].CheckOut != "17:00" || row.Events[1].Index != 3 {
		t.Errorf("events = %+v", row.Events)
	}
}
