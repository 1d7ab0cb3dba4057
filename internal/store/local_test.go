package store

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/tally/internal/model"
)

func TestUpdateAppliesAndPersists(t *testing.T) {
	blobs := newMemBlobs()
	local := NewLocal(blobs, slog.Default())

	err := local.Update(context.Background(), func(st *model.State) error {
		st.QuitDate = "2026-03-01"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := local.State().QuitDate; got != "2026-03-01" {
		t.Errorf("in memory = %q", got)
	}
	if got := NewLocal(blobs, slog.Default()).Load(context.Background()).QuitDate; got != "2026-03-01" {
		t.Errorf("persisted = %q", got)
	}
}

func TestUpdateErrorsLeaveStateUnchanged(t *testing.T) {
	errRejected := errors.New("rejected")

	tests := []struct {
		name    string
		failIO  bool
		fnErr   error
		wantErr error
	}{
		{name: "fn error", fnErr: errRejected, wantErr: errRejected},
		{name: "persist error", failIO: true, wantErr: errDiskFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := newMemBlobs()
			local := NewLocal(blobs, slog.Default())
			if tt.failIO {
				blobs.failWrites(errDiskFull)
			}

			err := local.Update(context.Background(), func(st *model.State) error {
				st.Records = append(st.Records, model.Event{ID: "x"})
				st.Config.HabitName = "Changed"
				return tt.fnErr
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			st := local.State()
			if len(st.Records) != 0 || st.Config.HabitName != model.DefaultHabitName {
				t.Errorf("state changed after failed update: %+v", st)
			}
		})
	}
}

func TestSettingsSaveDoesNotDropConcurrentAppends(t *testing.T) {
	const n = 50
	es, local, _, _ := setupEventStore(t, time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))
	ss := NewSettingsStore(local)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := es.Append(ctx, model.Detail{}); err != nil {
				t.Errorf("append: %v", err)
			}
		}()
		go func(i int) {
			defer wg.Done()
			if _, err := ss.Save(ctx, model.SettingsInput{RemindInterval: strconv.Itoa(i + 1)}); err != nil {
				t.Errorf("save settings: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(es.Events()); got != n {
		t.Errorf("events = %d, want %d", got, n)
	}
	if got := len(local.Load(ctx).Records); got != n {
		t.Errorf("persisted events = %d, want %d", got, n)
	}
}
