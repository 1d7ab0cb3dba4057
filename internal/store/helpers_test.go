package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/dukerupert/tally/internal/blob"
)

var errDiskFull = errors.New("disk full")

// memBlobs is an in-memory blob.Store whose writes can be made to fail.
type memBlobs struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
	saves   int
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: make(map[string][]byte)}
}

func (m *memBlobs) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memBlobs) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memBlobs) Close() error { return nil }

func (m *memBlobs) failWrites(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

func setupEventStore(t *testing.T, start time.Time) (*EventStore, *Local, *memBlobs, *clockwork.FakeClock) {
	t.Helper()
	blobs := newMemBlobs()
	local := NewLocal(blobs, slog.Default())
	clk := clockwork.NewFakeClockAt(start)
	return NewEventStore(local, clk), local, blobs, clk
}
