package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dukerupert/tally/internal/model"
)

// Sender delivers one payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub model.Subscription, payload Payload) error
}

// Registry is the subscription set a Dispatcher broadcasts to.
type Registry interface {
	List() []model.Subscription
	Remove(ctx context.Context, endpoint string) (bool, error)
}

// Notifier receives every broadcast payload for in-app delivery.
type Notifier interface {
	Notify(payload Payload)
}

// Result tallies the outcome of one broadcast.
type Result struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Pruned    int `json:"pruned"`
	Failed    int `json:"failed"`
}

// Dispatcher sends a payload to every registered subscription, pruning the
// ones the push service reports as gone.
type Dispatcher struct {
	mu       sync.Mutex
	registry Registry
	sender   Sender
	notifier Notifier
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. notifier may be nil.
func NewDispatcher(registry Registry, sender Sender, notifier Notifier, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		sender:   sender,
		notifier: notifier,
		logger:   logger,
	}
}

// Broadcast attempts delivery exactly once per subscription. Broadcasts are
// serialized so concurrent prunes never race each other.
func (d *Dispatcher) Broadcast(ctx context.Context, payload Payload) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.notifier != nil {
		d.notifier.Notify(payload)
	}

	var res Result
	for _, sub := range d.registry.List() {
		res.Attempted++

		err := d.sender.Send(ctx, sub, payload)
		switch {
		case err == nil:
			res.Delivered++
		case errors.Is(err, ErrExpired):
			removed, err := d.registry.Remove(ctx, sub.Endpoint)
			switch {
			case err != nil:
				res.Failed++
				d.logger.Error("prune expired subscription", "endpoint", sub.Endpoint, "error", err)
			case removed:
				res.Pruned++
			default:
				d.logger.Debug("expired subscription already gone", "endpoint", sub.Endpoint)
			}
		default:
			res.Failed++
			d.logger.Warn("push delivery failed", "endpoint", sub.Endpoint, "error", err)
		}
	}

	d.logger.Info("broadcast",
		"attempted", res.Attempted,
		"delivered", res.Delivered,
		"pruned", res.Pruned,
		"failed", res.Failed,
	)
	return res
}
