package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/tally/internal/blob"
	"github.com/dukerupert/tally/internal/model"
)

// StateKey is the blob key holding the client's {records, config} document.
const StateKey = "tally-data"

// Local holds the client state in memory and rewrites the whole blob on
// every mutation.
type Local struct {
	mu     sync.RWMutex
	blobs  blob.Store
	key    string
	logger *slog.Logger
	state  model.State
}

func NewLocal(blobs blob.Store, logger *slog.Logger) *Local {
	return &Local{
		blobs:  blobs,
		key:    StateKey,
		logger: logger,
		state:  model.NewState(),
	}
}

// Load reads the persisted state into memory. Missing or malformed data
// yields an empty log with default settings.
func (l *Local) Load(ctx context.Context) model.State {
	next := l.read(ctx)

	l.mu.Lock()
	l.state = next
	l.mu.Unlock()

	return cloneState(next)
}

func (l *Local) read(ctx context.Context) model.State {
	data, err := l.blobs.Load(ctx, l.key)
	if errors.Is(err, blob.ErrNotFound) {
		return model.NewState()
	}
	if err != nil {
		l.logger.Warn("load state, using defaults", "error", err)
		return model.NewState()
	}

	var st model.State
	if err := json.Unmarshal(data, &st); err != nil {
		l.logger.Warn("malformed state, using defaults", "error", err)
		return model.NewState()
	}
	if st.Records == nil {
		st.Records = []model.Event{}
	}
	st.Config = st.Config.MergeDefaults()
	return st
}

// State returns a copy of the in-memory state.
func (l *Local) State() model.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneState(l.state)
}

// Replace persists next and, only if that succeeds, makes it the in-memory
// state.
func (l *Local) Replace(ctx context.Context, next model.State) error {
	next = cloneState(next)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.state = next
	return nil
}

// Update runs fn on a copy of the state, persists the result and only then
// swaps it in, all under one lock. An error from fn leaves everything as it
// was.
func (l *Local) Update(ctx context.Context, fn func(*model.State) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := cloneState(l.state)
	if err := fn(&next); err != nil {
		return err
	}
	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.state = next
	return nil
}

// Mutate applies fn to the in-memory state and then persists it. The
// in-memory change stands even when the write fails.
func (l *Local) Mutate(ctx context.Context, fn func(*model.State)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	fn(&l.state)
	return l.persist(ctx, l.state)
}

func (l *Local) persist(ctx context.Context, st model.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := l.blobs.Save(ctx, l.key, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func cloneState(st model.State) model.State {
	out := st
	out.Records = append(make([]model.Event, 0, len(st.Records)), st.Records...)
	return out
}
