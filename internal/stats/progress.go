package stats

import (
	"math"
	"time"

	"github.com/dukerupert/tally/internal/clock"
	"github.com/dukerupert/tally/internal/model"
)

// Recovery is a rough per-area recovery percentage, each capped at 100.
type Recovery struct {
	Lung   float64 `json:"lung"`
	Heart  float64 `json:"heart"`
	Mental float64 `json:"mental"`
}

// Achievement is one milestone and whether it has been reached.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Progress is the quit-tracking view: time since the quit date, what was
// avoided against the old daily baseline, and the milestones that implies.
type Progress struct {
	QuitDate        string        `json:"quitDate,omitempty"`
	DaysSinceQuit   int           `json:"daysSinceQuit"`
	TodayCount      int           `json:"todayCount"`
	DailyTarget     int           `json:"dailyTarget"`
	TargetProgress  float64       `json:"targetProgress"`
	Avoided         int           `json:"avoided"`
	MoneySaved      float64       `json:"moneySaved"`
	SavingsProgress float64       `json:"savingsProgress"`
	HealthIndex     float64       `json:"healthIndex"`
	Recovery        Recovery      `json:"recovery"`
	Achievements    []Achievement `json:"achievements"`
	Motivation      string        `json:"motivation"`
}

// BuildProgress computes Progress for the whole log. Every logged event
// counts against the baseline, whatever its date.
func BuildProgress(events []model.Event, quitDate string, s model.Settings, now time.Time) Progress {
	days := DaysSince(quitDate, now)
	today := TodayCount(events, now)
	avoided := Avoided(days, s.BaselinePerDay, len(events))
	saved := MoneySaved(avoided, s.PackPrice, s.UnitsPerPack)

	return Progress{
		QuitDate:        quitDate,
		DaysSinceQuit:   days,
		TodayCount:      today,
		DailyTarget:     s.DailyTarget,
		TargetProgress:  TargetProgress(today, s.DailyTarget),
		Avoided:         avoided,
		MoneySaved:      saved,
		SavingsProgress: percentOf(saved, s.SavingsTarget),
		HealthIndex:     HealthIndex(days, avoided),
		Recovery:        RecoveryAfter(days),
		Achievements:    Achievements(days, avoided, saved),
		Motivation:      Motivation(days),
	}
}

// DaysSince counts whole days from the start of quitDate in now's location
// to now. An empty, malformed or future date gives 0.
func DaysSince(quitDate string, now time.Time) int {
	if quitDate == "" {
		return 0
	}
	q, err := clock.ParseDate(quitDate, now.Location())
	if err != nil || now.Before(q) {
		return 0
	}
	return int(now.Sub(q) / (24 * time.Hour))
}

// Avoided is how many units fewer than baseline-per-day were logged over
// days. Never negative.
func Avoided(days, baselinePerDay, logged int) int {
	return max(0, days*baselinePerDay-logged)
}

// MoneySaved prices avoided units at packPrice per unitsPerPack.
func MoneySaved(avoided int, packPrice float64, unitsPerPack int) float64 {
	if unitsPerPack <= 0 {
		return 0
	}
	return float64(avoided) * packPrice / float64(unitsPerPack)
}

// TargetProgress is the percentage of today's allowance still unused.
// A target of zero or less counts as fully met.
func TargetProgress(today, target int) float64 {
	if target <= 0 {
		return 100
	}
	return math.Max(0, float64(target-today)/float64(target)*100)
}

// HealthIndex blends days since quitting with units avoided, capped at 100.
func HealthIndex(days, avoided int) float64 {
	return math.Min(100, float64(days)*2+float64(avoided)*0.5)
}

// RecoveryAfter estimates per-area recovery after days without the habit.
func RecoveryAfter(days int) Recovery {
	d := float64(days)
	return Recovery{
		Lung:   math.Min(100, d*0.5),
		Heart:  math.Min(100, d*0.3),
		Mental: math.Min(100, d*0.8),
	}
}

// Achievements returns the fixed milestone set in display order.
func Achievements(days, avoided int, saved float64) []Achievement {
	return []Achievement{
		{ID: "first-day", Title: "First step", Description: "1 day since quitting", Completed: days >= 1},
		{ID: "first-week", Title: "One week strong", Description: "7 days since quitting", Completed: days >= 7},
		{ID: "first-month", Title: "Monthly challenge", Description: "30 days since quitting", Completed: days >= 30},
		{ID: "saver", Title: "Money saver", Description: "100 saved", Completed: saved >= 100},
		{ID: "avoided-100", Title: "Health pioneer", Description: "100 fewer than baseline", Completed: avoided >= 100},
	}
}

var motivations = []string{
	"Every no is a step toward better health.",
	"Keep going, you're doing great.",
	"Your lungs are thanking you.",
	"Saving money and getting healthier at once.",
	"Every day is a fresh start.",
	"You've come this far, don't give up now.",
}

// Motivation picks the message for day n, cycling through a fixed list.
func Motivation(days int) string {
	if days < 0 {
		days = 0
	}
	return motivations[days%len(motivations)]
}

func percentOf(v, target float64) float64 {
	if target <= 0 {
		return 100
	}
	return math.Min(100, v/target*100)
}
