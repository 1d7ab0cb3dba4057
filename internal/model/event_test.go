package model

import (
	"encoding/json"
	"testing"
)

func TestEventIDDecoding(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "string", raw: `{"id":"a1","timestamp":1}`, want: "a1"},
		{name: "integer", raw: `{"id":1700000000000,"timestamp":1}`, want: "1700000000000"},
		{name: "null", raw: `{"id":null,"timestamp":1}`, want: ""},
		{name: "missing", raw: `{"timestamp":1}`, want: ""},
		{name: "object", raw: `{"id":{},"timestamp":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Event
			err := json.Unmarshal([]byte(tt.raw), &e)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", e)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if e.ID != tt.want {
				t.Errorf("id = %q, want %q", e.ID, tt.want)
			}
			if e.Timestamp != 1 {
				t.Errorf("timestamp = %d, want 1", e.Timestamp)
			}
		})
	}
}

func TestEventDecodeKeepsOtherFields(t *testing.T) {
	var e Event
	raw := `{"id":7,"timestamp":1700000000000,"localDate":"2023-11-14","trigger":"stress","mood":5,"note":"n"}`
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Event{ID: "7", Timestamp: 1700000000000, LocalDate: "2023-11-14", Trigger: "stress", Mood: 5, Note: "n"}
	if e != want {
		t.Errorf("event = %+v, want %+v", e, want)
	}
}
