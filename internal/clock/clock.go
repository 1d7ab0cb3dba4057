// Package clock supplies the current time and the calendar math the rest of
// tally uses to bucket events into days, months and years.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DateLayout is the local calendar date format stored on every event.
const DateLayout = "2006-01-02"

// Clock is the source of "now" and of tickers. Production code uses New();
// tests inject a clockwork fake.
type Clock = clockwork.Clock

// New returns the wall clock.
func New() Clock {
	return clockwork.NewRealClock()
}

// LocalDate formats t as a calendar date in t's own location.
func LocalDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a local date string in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, loc)
}

// SameDay reports whether date falls on ref's calendar day.
func SameDay(date string, ref time.Time) bool {
	return date == LocalDate(ref)
}

// SameMonth reports whether date falls in ref's calendar month and year.
func SameMonth(date string, ref time.Time) bool {
	return len(date) >= 7 && date[:7] == ref.Format("2006-01")
}

// SameYear reports whether date falls in ref's calendar year.
func SameYear(date string, ref time.Time) bool {
	return len(date) >= 4 && date[:4] == ref.Format("2006")
}

// MinutesBetween returns the elapsed minutes from a to b, both in epoch ms.
func MinutesBetween(a, b int64) float64 {
	return float64(b-a) / float64(time.Minute/time.Millisecond)
}
