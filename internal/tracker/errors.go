package tracker

import "errors"

var (
	ErrInvalidMood    = errors.New("mood must be between 1 and 10")
	ErrMissingTrigger = errors.New("a trigger is required when recording mood or a note")
	ErrInvalidImport  = errors.New("invalid import file")
)
