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

// SubscriptionsKey is the blob key holding the JSON array of subscriptions.
const SubscriptionsKey = "subscriptions.json"

// SubscriptionRegistry is the relay's set of push endpoints, keyed by
// endpoint. Every change is written through to the blob store.
type SubscriptionRegistry struct {
	mu     sync.Mutex
	blobs  blob.Store
	key    string
	logger *slog.Logger
	subs   []model.Subscription
}

func NewSubscriptionRegistry(blobs blob.Store, logger *slog.Logger) *SubscriptionRegistry {
	return &SubscriptionRegistry{
		blobs:  blobs,
		key:    SubscriptionsKey,
		logger: logger,
		subs:   []model.Subscription{},
	}
}

// Load replaces the in-memory set with the persisted one. Missing or
// malformed data loads as an empty set. Duplicate endpoints keep their first
// entry.
func (r *SubscriptionRegistry) Load(ctx context.Context) []model.Subscription {
	loaded := r.read(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = make([]model.Subscription, 0, len(loaded))
	seen := make(map[string]struct{}, len(loaded))
	for _, sub := range loaded {
		if sub.Endpoint == "" {
			continue
		}
		if _, ok := seen[sub.Endpoint]; ok {
			continue
		}
		seen[sub.Endpoint] = struct{}{}
		r.subs = append(r.subs, sub)
	}
	return r.snapshotLocked()
}

func (r *SubscriptionRegistry) read(ctx context.Context) []model.Subscription {
	data, err := r.blobs.Load(ctx, r.key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil
	}
	if err != nil {
		r.logger.Warn("load subscriptions, starting empty", "error", err)
		return nil
	}

	var subs []model.Subscription
	if err := json.Unmarshal(data, &subs); err != nil {
		r.logger.Warn("malformed subscriptions, starting empty", "error", err)
		return nil
	}
	return subs
}

// Add inserts sub unless an entry with the same endpoint exists. It reports
// whether the set changed.
func (r *SubscriptionRegistry) Add(ctx context.Context, sub model.Subscription) (bool, error) {
	if sub.Endpoint == "" {
		return false, ErrInvalidSubscription
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexLocked(sub.Endpoint) >= 0 {
		return false, nil
	}

	prev := r.subs
	r.subs = append(append([]model.Subscription(nil), prev...), sub)
	if err := r.persistLocked(ctx); err != nil {
		r.subs = prev
		return false, err
	}
	return true, nil
}

// Remove deletes the entry for endpoint. It reports whether the set changed.
func (r *SubscriptionRegistry) Remove(ctx context.Context, endpoint string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(endpoint)
	if i < 0 {
		return false, nil
	}

	prev := r.subs
	next := make([]model.Subscription, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	r.subs = next
	if err := r.persistLocked(ctx); err != nil {
		r.subs = prev
		return false, err
	}
	return true, nil
}

// List returns a snapshot in insertion order.
func (r *SubscriptionRegistry) List() []model.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Len returns the number of registered endpoints.
func (r *SubscriptionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Persist writes the whole set.
func (r *SubscriptionRegistry) Persist(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.persistLocked(ctx)
}

func (r *SubscriptionRegistry) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(r.subs)
	if err != nil {
		return fmt.Errorf("marshal subscriptions: %w", err)
	}
	if err := r.blobs.Save(ctx, r.key, data); err != nil {
		return fmt.Errorf("save subscriptions: %w", err)
	}
	return nil
}

func (r *SubscriptionRegistry) indexLocked(endpoint string) int {
	for i, s := range r.subs {
		if s.Endpoint == endpoint {
			return i
		}
	}
	return -1
}

func (r *SubscriptionRegistry) snapshotLocked() []model.Subscription {
	return append(make([]model.Subscription, 0, len(r.subs)), r.subs...)
}
