package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/tally/internal/clock"
	"github.com/dukerupert/tally/internal/model"
)

var ErrUnknownScope = errors.New("unknown scope")

// Scope is the window a report or count is restricted to, relative to now.
type Scope string

const (
	ScopeToday Scope = "today"
	ScopeMonth Scope = "month"
	ScopeYear  Scope = "year"
	ScopeAll   Scope = "all"
)

// ParseScope accepts a scope name, case-insensitively. Empty means today.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeToday:
		return ScopeToday, nil
	case ScopeMonth:
		return ScopeMonth, nil
	case ScopeYear:
		return ScopeYear, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// Contains reports whether e falls inside the scope around now.
func (s Scope) Contains(e model.Event, now time.Time) bool {
	switch s {
	case ScopeToday:
		return clock.SameDay(e.LocalDate, now)
	case ScopeMonth:
		return clock.SameMonth(e.LocalDate, now)
	case ScopeYear:
		return clock.SameYear(e.LocalDate, now)
	default:
		return true
	}
}

// Filter returns the events inside the scope, preserving order.
func Filter(events []model.Event, scope Scope, now time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if scope.Contains(e, now) {
			out = append(out, e)
		}
	}
	return out
}
