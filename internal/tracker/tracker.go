// Package tracker is the command interface a presentation layer drives: check
// in, change settings, read reports, export and import, and run reminders.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/tally/internal/clock"
	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/push"
	"github.com/dukerupert/tally/internal/reminder"
	"github.com/dukerupert/tally/internal/stats"
	"github.com/dukerupert/tally/internal/store"
)

// RecentLimit is how many events Summary lists.
const RecentLimit = 5

// ReminderFunc receives each reminder as it fires.
type ReminderFunc func(p push.Payload, at time.Time)

// Tracker owns the client-side state and its reminder loop.
type Tracker struct {
	clock     clock.Clock
	local     *store.Local
	events    *store.EventStore
	settings  *store.SettingsStore
	scheduler *reminder.Scheduler
	logger    *slog.Logger

	onRemind ReminderFunc
}

// New builds a Tracker over local and loads persisted state.
func New(ctx context.Context, local *store.Local, clk clock.Clock, logger *slog.Logger) *Tracker {
	t := &Tracker{
		clock:     clk,
		local:     local,
		events:    store.NewEventStore(local, clk),
		settings:  store.NewSettingsStore(local),
		scheduler: reminder.NewScheduler(clk, logger.With("component", "reminder")),
		logger:    logger,
	}
	st := local.Load(ctx)
	logger.Debug("state loaded", "events", len(st.Records), "interval", st.Config.RemindInterval)
	return t
}

// CheckIn records one event now.
func (t *Tracker) CheckIn(ctx context.Context, d model.Detail) (model.Event, error) {
	d.Trigger = strings.TrimSpace(d.Trigger)
	d.Note = strings.TrimSpace(d.Note)

	if d.Mood != 0 && (d.Mood < 1 || d.Mood > 10) {
		return model.Event{}, fmt.Errorf("%w: got %d", ErrInvalidMood, d.Mood)
	}
	if d.Trigger == "" && (d.Mood != 0 || d.Note != "") {
		return model.Event{}, ErrMissingTrigger
	}

	e, err := t.events.Append(ctx, d)
	if err != nil {
		t.logger.Error("persist check-in", "error", err)
		return e, fmt.Errorf("check in: %w", err)
	}
	return e, nil
}

// Settings returns the current settings.
func (t *Tracker) Settings() model.Settings {
	return t.settings.Get()
}

// SaveSettings applies in. A running reminder loop is restarted with the new
// interval.
func (t *Tracker) SaveSettings(ctx context.Context, in model.SettingsInput) (model.Settings, error) {
	saved, err := t.settings.Save(ctx, in)
	if err != nil {
		return saved, err
	}
	if err := t.restartIfRunning(); err != nil {
		return saved, err
	}
	return saved, nil
}

// Events returns the whole log in order.
func (t *Tracker) Events() []model.Event {
	return t.events.Events()
}

// Recent returns the last n events, newest first.
func (t *Tracker) Recent(n int) []model.Event {
	return t.events.Recent(n)
}

// Report computes the statistics for one scope as of now.
func (t *Tracker) Report(scope stats.Scope) stats.Report {
	return stats.Build(t.events.Events(), scope, t.clock.Now())
}

// Summary is the at-a-glance view shown after every check-in.
type Summary struct {
	Today                  int            `json:"today"`
	Month                  int            `json:"month"`
	Year                   int            `json:"year"`
	AverageIntervalMinutes *float64       `json:"averageIntervalMinutes"`
	Recent                 []model.Event  `json:"recent"`
	Settings               model.Settings `json:"settings"`
	Progress               stats.Progress `json:"progress"`
}

// Summary returns counts for today, this month and this year.
func (t *Tracker) Summary() Summary {
	events := t.events.Events()
	now := t.clock.Now()

	s := Summary{
		Today:    stats.TodayCount(events, now),
		Month:    stats.CountInMonth(events, now),
		Year:     stats.CountInYear(events, now),
		Recent:   t.events.Recent(RecentLimit),
		Settings: t.settings.Get(),
		Progress: t.Progress(),
	}
	if avg, ok := stats.AverageIntervalMinutes(events); ok {
		s.AverageIntervalMinutes = &avg
	}
	return s
}

// Progress reports time since the quit date and what it has saved.
func (t *Tracker) Progress() stats.Progress {
	st := t.local.State()
	return stats.BuildProgress(st.Records, st.QuitDate, st.Config, t.clock.Now())
}

// Export snapshots the current state.
func (t *Tracker) Export() model.Export {
	st := t.local.State()
	return model.Export{
		Data:       st,
		Settings:   st.Config,
		ExportDate: t.clock.Now().UTC(),
	}
}

// ExportJSON returns Export as indented JSON.
func (t *Tracker) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(t.Export(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// Import replaces records and settings with the contents of an export. The
// payload must carry both a data and a settings section; otherwise nothing
// changes.
func (t *Tracker) Import(ctx context.Context, raw []byte) error {
	next, err := parseImport(raw, t.clock.Now().Location())
	if err != nil {
		return err
	}

	if err := t.local.Replace(ctx, next); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	t.logger.Info("imported", "events", len(next.Records))
	return t.restartIfRunning()
}

func parseImport(raw []byte, loc *time.Location) (model.State, error) {
	var p model.ImportPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.State{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if absent(p.Data) || absent(p.Settings) {
		return model.State{}, fmt.Errorf("%w: data and settings sections are required", ErrInvalidImport)
	}

	var data model.State
	if err := json.Unmarshal(p.Data, &data); err != nil {
		return model.State{}, fmt.Errorf("%w: data: %v", ErrInvalidImport, err)
	}
	var settings model.Settings
	if err := json.Unmarshal(p.Settings, &settings); err != nil {
		return model.State{}, fmt.Errorf("%w: settings: %v", ErrInvalidImport, err)
	}

	records := make([]model.Event, 0, len(data.Records))
	for _, e := range data.Records {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.LocalDate == "" {
			e.LocalDate = clock.LocalDate(e.Time(loc))
		}
		records = append(records, e)
	}
	slices.SortStableFunc(records, func(a, b model.Event) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})

	quit, err := importQuitDate(data.QuitDate, loc)
	if err != nil {
		return model.State{}, fmt.Errorf("%w: data: %v", ErrInvalidImport, err)
	}

	return model.State{Records: records, Config: settings.MergeDefaults(), QuitDate: quit}, nil
}

// importQuitDate accepts a plain local date or a full RFC 3339 timestamp,
// which is reduced to its date in loc.
func importQuitDate(v string, loc *time.Location) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if _, err := clock.ParseDate(v, loc); err == nil {
		return v, nil
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return "", fmt.Errorf("quitDate %q is not a date", v)
	}
	return clock.LocalDate(ts.In(loc)), nil
}

func absent(section json.RawMessage) bool {
	s := bytes.TrimSpace(section)
	return len(s) == 0 || bytes.Equal(s, []byte("null"))
}

// Clear deletes every event and restores default settings.
func (t *Tracker) Clear(ctx context.Context) error {
	if err := t.local.Replace(ctx, model.NewState()); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	t.logger.Info("state cleared")
	return t.restartIfRunning()
}

// ReminderPayload builds the reminder text from the current settings.
func (t *Tracker) ReminderPayload() push.Payload {
	s := t.settings.Get()
	return push.Payload{
		Title: s.NotifyTitle,
		Body:  fmt.Sprintf("Time to log your %s check-in.", s.HabitName),
	}
}

// StartReminders starts the reminder loop at the configured interval.
// Calling it again replaces the previous loop.
func (t *Tracker) StartReminders(onRemind ReminderFunc) error {
	t.onRemind = onRemind
	return t.startScheduler()
}

func (t *Tracker) startScheduler() error {
	interval := time.Duration(t.settings.Get().RemindInterval) * time.Minute
	notify := t.onRemind
	return t.scheduler.Start(interval, func(at time.Time) {
		if notify != nil {
			notify(t.ReminderPayload(), at)
		}
	})
}

func (t *Tracker) restartIfRunning() error {
	if t.scheduler.State() != reminder.StateRunning {
		return nil
	}
	return t.startScheduler()
}

// StopReminders stops the reminder loop.
func (t *Tracker) StopReminders() {
	t.scheduler.Stop()
}

// RemindersRunning reports whether the reminder loop is active.
func (t *Tracker) RemindersRunning() bool {
	return t.scheduler.State() == reminder.StateRunning
}

// ReminderInterval returns the live loop's interval, or zero when stopped.
func (t *Tracker) ReminderInterval() time.Duration {
	return t.scheduler.Interval()
}

// Close stops the reminder loop.
func (t *Tracker) Close() {
	t.StopReminders()
}
