package store

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/tally/internal/clock"
	"github.com/dukerupert/tally/internal/model"
)

// SettingsStore owns the settings half of the client state, plus the quit
// date.
type SettingsStore struct {
	local *Local
}

func NewSettingsStore(local *Local) *SettingsStore {
	return &SettingsStore{local: local}
}

// Get returns the current settings.
func (s *SettingsStore) Get() model.Settings {
	return s.local.State().Config
}

// QuitDate returns the stored quit date, or "" if none was set.
func (s *SettingsStore) QuitDate() string {
	return s.local.State().QuitDate
}

// Save applies in over the current settings. Blank fields keep their current
// value. Any malformed field rejects the whole input without changing
// anything; a numeric interval outside the allowed range is clamped.
func (s *SettingsStore) Save(ctx context.Context, in model.SettingsInput) (model.Settings, error) {
	var saved model.Settings
	err := s.local.Update(ctx, func(st *model.State) error {
		next, err := apply(st.Config, in)
		if err != nil {
			return err
		}
		if v := strings.TrimSpace(in.QuitDate); v != "" {
			if _, err := time.Parse(clock.DateLayout, v); err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidQuitDate, v)
			}
			st.QuitDate = v
		}
		st.Config = next
		saved = next
		return nil
	})
	if err != nil {
		return s.Get(), err
	}
	return saved, nil
}

func apply(cur model.Settings, in model.SettingsInput) (model.Settings, error) {
	next := cur

	if v := strings.TrimSpace(in.HabitName); v != "" {
		next.HabitName = v
	}
	if v := strings.TrimSpace(in.NotifyTitle); v != "" {
		next.NotifyTitle = v
	}
	if v := strings.TrimSpace(in.RemindInterval); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return cur, fmt.Errorf("%w: %q", ErrInvalidInterval, v)
		}
		next.RemindInterval = model.ClampInterval(minutes)
	}

	ints := []struct {
		name string
		raw  string
		dst  *int
	}{
		{"baseline", in.BaselinePerDay, &next.BaselinePerDay},
		{"units per pack", in.UnitsPerPack, &next.UnitsPerPack},
		{"daily target", in.DailyTarget, &next.DailyTarget},
	}
	for _, f := range ints {
		v := strings.TrimSpace(f.raw)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cur, fmt.Errorf("%s: %w: %q", f.name, ErrInvalidNumber, v)
		}
		*f.dst = n
	}

	floats := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"pack price", in.PackPrice, &next.PackPrice},
		{"savings target", in.SavingsTarget, &next.SavingsTarget},
	}
	for _, f := range floats {
		v := strings.TrimSpace(f.raw)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || !(n > 0) || math.IsInf(n, 1) {
			return cur, fmt.Errorf("%s: %w: %q", f.name, ErrInvalidNumber, v)
		}
		*f.dst = n
	}
	return next, nil
}
