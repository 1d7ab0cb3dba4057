package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Event is one check-in. Events are immutable once created.
type Event struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // milliseconds since epoch
	LocalDate string `json:"localDate"` // YYYY-MM-DD in the creating client's calendar
	Trigger   string `json:"trigger,omitempty"`
	Mood      int    `json:"mood,omitempty"` // 1..10, 0 when not recorded
	Note      string `json:"note,omitempty"`
}

// UnmarshalJSON accepts the id as a string or as a JSON number, the form
// older exports use (a millisecond timestamp).
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	aux := struct {
		ID json.RawMessage `json:"id"`
		*plain
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	e.ID = ""
	raw := bytes.TrimSpace(aux.ID)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &e.ID); err != nil {
			return err
		}
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("event id: %w", err)
		}
		e.ID = n.String()
	}
	return nil
}

// Time returns the event timestamp in loc.
func (e Event) Time(loc *time.Location) time.Time {
	return time.UnixMilli(e.Timestamp).In(loc)
}

// Detail is the optional context captured with a check-in.
type Detail struct {
	Trigger string
	Mood    int
	Note    string
}

// Empty reports whether no detail was supplied.
func (d Detail) Empty() bool {
	return d.Trigger == "" && d.Mood == 0 && d.Note == ""
}
