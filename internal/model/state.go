package model

import (
	"encoding/json"
	"time"
)

// State is the client's persisted blob: the full event log plus settings.
type State struct {
	Records []Event  `json:"records"`
	Config  Settings `json:"config"`

	// QuitDate is the local date the user stopped, empty until set.
	QuitDate string `json:"quitDate,omitempty"`
}

// NewState returns an empty log with default settings.
func NewState() State {
	return State{Records: []Event{}, Config: DefaultSettings()}
}

// Export is a downloadable snapshot of the client state.
type Export struct {
	Data       State     `json:"data"`
	Settings   Settings  `json:"settings"`
	ExportDate time.Time `json:"exportDate"`
}

// ImportPayload mirrors Export but keeps sections raw so their presence can
// be checked before anything is decoded into live state.
type ImportPayload struct {
	Data     json.RawMessage `json:"data"`
	Settings json.RawMessage `json:"settings"`
}
