// Package reminder runs the single repeating timer that fires reminder
// callbacks. It decides when a reminder is due; callers decide how to deliver
// it.
package reminder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/tally/internal/clock"
)

var ErrInvalidInterval = errors.New("reminder interval must be positive")

// State is Stopped or Running.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// FireFunc is called once per tick with the tick time. It runs on its own
// goroutine so a slow handler never delays the next tick.
type FireFunc func(t time.Time)

// Scheduler owns at most one live ticker.
type Scheduler struct {
	mu       sync.Mutex
	clock    clock.Clock
	logger   *slog.Logger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(clk clock.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{clock: clk, logger: logger}
}

// Start stops any running ticker and starts a new one firing onFire every
// interval until Stop. Calling it again restarts; there is never more than one
// ticker.
func (s *Scheduler) Start(interval time.Duration, onFire FireFunc) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	// The ticker exists before Start returns, so a fake clock advanced
	// immediately afterwards still fires it.
	ticker := s.clock.NewTicker(interval)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.interval = interval
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.Chan():
				go onFire(t)
			}
		}
	}()

	s.logger.Info("reminders started", "interval", interval)
	return nil
}

// Stop cancels the running ticker and waits for its loop to exit. It is a
// no-op when already stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopLocked() {
		s.logger.Info("reminders stopped")
	}
}

func (s *Scheduler) stopLocked() bool {
	if s.cancel == nil {
		return false
	}
	s.cancel()
	<-s.done

	s.cancel = nil
	s.done = nil
	s.interval = 0
	return true
}

// State reports whether a ticker is live.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return StateStopped
	}
	return StateRunning
}

// Interval is the running ticker's period, or zero when stopped.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}
