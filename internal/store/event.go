package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/tally/internal/clock"
	"github.com/dukerupert/tally/internal/model"
)

// EventStore is the append-only check-in log. Events are kept in arrival
// order, which is also timestamp order.
type EventStore struct {
	local *Local
	clock clock.Clock
}

func NewEventStore(local *Local, clk clock.Clock) *EventStore {
	return &EventStore{local: local, clock: clk}
}

// Append records a check-in stamped with the current time. The event is kept
// in memory even if persisting fails; the error is returned so the caller can
// report it.
func (s *EventStore) Append(ctx context.Context, d model.Detail) (model.Event, error) {
	now := s.clock.Now()
	e := model.Event{
		ID:        uuid.NewString(),
		Timestamp: now.UnixMilli(),
		LocalDate: clock.LocalDate(now),
		Trigger:   d.Trigger,
		Mood:      d.Mood,
		Note:      d.Note,
	}

	err := s.local.Mutate(ctx, func(st *model.State) {
		st.Records = append(st.Records, e)
	})
	return e, err
}

// Load reloads persisted events, or none if nothing valid is stored.
func (s *EventStore) Load(ctx context.Context) []model.Event {
	return s.local.Load(ctx).Records
}

// Save overwrites the persisted log with events.
func (s *EventStore) Save(ctx context.Context, events []model.Event) error {
	return s.local.Update(ctx, func(st *model.State) error {
		st.Records = append(make([]model.Event, 0, len(events)), events...)
		return nil
	})
}

// Clear empties the log and persists the empty state.
func (s *EventStore) Clear(ctx context.Context) error {
	return s.Save(ctx, []model.Event{})
}

// Events returns a snapshot of the whole log.
func (s *EventStore) Events() []model.Event {
	return s.local.State().Records
}

// Recent returns the last n events, most recent first.
func (s *EventStore) Recent(n int) []model.Event {
	events := s.Events()
	if n <= 0 {
		return []model.Event{}
	}
	if n > len(events) {
		n = len(events)
	}

	out := make([]model.Event, 0, n)
	for i := len(events) - 1; i >= len(events)-n; i-- {
		out = append(out, events[i])
	}
	return out
}

// InWindow returns the events matching pred, in log order.
func (s *EventStore) InWindow(pred func(model.Event) bool) []model.Event {
	out := []model.Event{}
	for _, e := range s.Events() {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// Today matches events on now's local calendar day.
func Today(now time.Time) func(model.Event) bool {
	return func(e model.Event) bool { return clock.SameDay(e.LocalDate, now) }
}

// ThisMonth matches events in now's calendar month.
func ThisMonth(now time.Time) func(model.Event) bool {
	return func(e model.Event) bool { return clock.SameMonth(e.LocalDate, now) }
}

// ThisYear matches events in now's calendar year.
func ThisYear(now time.Time) func(model.Event) bool {
	return func(e model.Event) bool { return clock.SameYear(e.LocalDate, now) }
}
