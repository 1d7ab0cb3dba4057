package store

import "errors"

var (
	ErrInvalidInterval     = errors.New("reminder interval must be a whole number of minutes")
	ErrInvalidNumber       = errors.New("value must be a positive number")
	ErrInvalidQuitDate     = errors.New("quit date must be YYYY-MM-DD")
	ErrInvalidSubscription = errors.New("subscription endpoint is required")
)
