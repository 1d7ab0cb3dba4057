// Package stats computes aggregates over a snapshot of the event log. Every
// function is pure: same events and same now give the same answer.
//
// Calendar membership (day, month, year) comes from each event's stored local
// date. Hour of day comes from the timestamp in the location supplied by the
// caller, or now's location for functions that take now.
package stats

import (
	"sort"
	"strconv"
	"time"

	"github.com/dukerupert/tally/internal/clock"
	"github.com/dukerupert/tally/internal/model"
)

// DaysInMonthHistogram is the fixed width of the per-month daily histogram.
// Day 31 has no slot.
const DaysInMonthHistogram = 30

// TodayCount counts events on now's local date.
func TodayCount(events []model.Event, now time.Time) int {
	return len(Filter(events, ScopeToday, now))
}

// CountInMonth counts events in now's calendar month.
func CountInMonth(events []model.Event, now time.Time) int {
	return len(Filter(events, ScopeMonth, now))
}

// CountInYear counts events in now's calendar year.
func CountInYear(events []model.Event, now time.Time) int {
	return len(Filter(events, ScopeYear, now))
}

// AverageIntervalMinutes is the mean gap between consecutive events, in
// minutes. ok is false when there are fewer than two events; that is "no
// data", distinct from an average of zero.
func AverageIntervalMinutes(events []model.Event) (avg float64, ok bool) {
	if len(events) < 2 {
		return 0, false
	}
	var total float64
	for i := 1; i < len(events); i++ {
		total += clock.MinutesBetween(events[i-1].Timestamp, events[i].Timestamp)
	}
	return total / float64(len(events)-1), true
}

// HourlyHistogram counts events per hour of day in loc.
func HourlyHistogram(events []model.Event, loc *time.Location) [24]int {
	var h [24]int
	for _, e := range events {
		h[e.Time(loc).Hour()]++
	}
	return h
}

// PeakHour returns the hour of day with the most events. When several hours
// tie for the maximum the largest hour wins. ok is false for no events.
func PeakHour(events []model.Event, loc *time.Location) (hour int, ok bool) {
	if len(events) == 0 {
		return 0, false
	}
	h := HourlyHistogram(events, loc)
	best := -1
	for i, n := range h {
		if n > 0 && (best < 0 || n >= h[best]) {
			best = i
		}
	}
	return best, true
}

// ActiveDayCount counts distinct local dates among the events in scope.
func ActiveDayCount(events []model.Event, scope Scope, now time.Time) int {
	days := make(map[string]struct{})
	for _, e := range events {
		if scope.Contains(e, now) {
			days[e.LocalDate] = struct{}{}
		}
	}
	return len(days)
}

// DailyHistogramForMonth counts events per day of now's month, indexed by
// day-1. Events on the 31st are not counted.
func DailyHistogramForMonth(events []model.Event, now time.Time) [DaysInMonthHistogram]int {
	var h [DaysInMonthHistogram]int
	for _, e := range events {
		if !clock.SameMonth(e.LocalDate, now) {
			continue
		}
		day := dayOfMonth(e.LocalDate)
		if day >= 1 && day <= DaysInMonthHistogram {
			h[day-1]++
		}
	}
	return h
}

// MonthlyHistogramForYear counts events per month of now's year, indexed by
// month-1.
func MonthlyHistogramForYear(events []model.Event, now time.Time) [12]int {
	var h [12]int
	for _, e := range events {
		if !clock.SameYear(e.LocalDate, now) {
			continue
		}
		if m := monthOf(e.LocalDate); m >= 1 && m <= 12 {
			h[m-1]++
		}
	}
	return h
}

// DayCount is one point of a daily trend.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DailyTrend returns counts for the last days calendar days ending on now's
// date, oldest first.
func DailyTrend(events []model.Event, now time.Time, days int) []DayCount {
	if days <= 0 {
		return []DayCount{}
	}
	perDay := make(map[string]int)
	for _, e := range events {
		perDay[e.LocalDate]++
	}

	out := make([]DayCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := clock.LocalDate(now.AddDate(0, 0, -i))
		out = append(out, DayCount{Date: date, Count: perDay[date]})
	}
	return out
}

// TriggerCount is the number of events recorded with one trigger.
type TriggerCount struct {
	Trigger string `json:"trigger"`
	Count   int    `json:"count"`
}

// TriggerBreakdown counts events per trigger, most frequent first and by name
// within equal counts. Events without a trigger are ignored.
func TriggerBreakdown(events []model.Event) []TriggerCount {
	counts := make(map[string]int)
	for _, e := range events {
		if e.Trigger != "" {
			counts[e.Trigger]++
		}
	}

	out := make([]TriggerCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TriggerCount{Trigger: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Trigger < out[j].Trigger
	})
	return out
}

// MoodHistogram counts events per mood score, indexed by mood-1. Events
// without a mood in 1..10 are ignored.
func MoodHistogram(events []model.Event) [10]int {
	var h [10]int
	for _, e := range events {
		if e.Mood >= 1 && e.Mood <= 10 {
			h[e.Mood-1]++
		}
	}
	return h
}

// AverageMood averages the recorded moods. ok is false when none were recorded.
func AverageMood(events []model.Event) (avg float64, ok bool) {
	var sum, n int
	for _, e := range events {
		if e.Mood >= 1 && e.Mood <= 10 {
			sum += e.Mood
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

func dayOfMonth(date string) int {
	if len(date) < 10 {
		return 0
	}
	d, err := strconv.Atoi(date[8:10])
	if err != nil {
		return 0
	}
	return d
}

func monthOf(date string) int {
	if len(date) < 7 {
		return 0
	}
	m, err := strconv.Atoi(date[5:7])
	if err != nil {
		return 0
	}
	return m
}
