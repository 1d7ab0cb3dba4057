package stats

import (
	"time"

	"github.com/dukerupert/tally/internal/model"
)

// Report is everything a report tab shows for one scope. Pointer fields are
// nil when there is not enough data.
type Report struct {
	Scope                  Scope          `json:"scope"`
	Date                   string         `json:"date"`
	Count                  int            `json:"count"`
	ActiveDays             int            `json:"activeDays"`
	AverageIntervalMinutes *float64       `json:"averageIntervalMinutes"`
	PeakHour               *int           `json:"peakHour"`
	AverageMood            *float64       `json:"averageMood"`
	Histogram              []int          `json:"histogram"`
	Triggers               []TriggerCount `json:"triggers"`
}

// Build filters events to scope once and computes every figure over that
// window. The histogram's shape follows the scope: 24 hours for today, 30
// days for the month, 12 months for the year and for all time.
func Build(events []model.Event, scope Scope, now time.Time) Report {
	window := Filter(events, scope, now)

	r := Report{
		Scope:      scope,
		Date:       now.Format(time.DateOnly),
		Count:      len(window),
		ActiveDays: ActiveDayCount(window, ScopeAll, now),
		Triggers:   TriggerBreakdown(window),
	}
	if avg, ok := AverageIntervalMinutes(window); ok {
		r.AverageIntervalMinutes = &avg
	}
	if h, ok := PeakHour(window, now.Location()); ok {
		r.PeakHour = &h
	}
	if m, ok := AverageMood(window); ok {
		r.AverageMood = &m
	}

	switch scope {
	case ScopeToday:
		h := HourlyHistogram(window, now.Location())
		r.Histogram = h[:]
	case ScopeMonth:
		h := DailyHistogramForMonth(window, now)
		r.Histogram = h[:]
	default:
		h := MonthlyHistogramForYear(window, now)
		r.Histogram = h[:]
	}
	return r
}
