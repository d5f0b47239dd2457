/*-------------------------------------------------------------------------
 *
 * feed.go
 *    Change-feed for application views
 *
 * Fans out the latest view snapshot of an application to subscribed
 * clients whenever its record, transition log, or remarks change.
 * Delivery is at-least-once; ordering is only guaranteed per
 * application. Optional backends propagate change notifications across
 * server instances.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/projection/feed.go
 *
 *-------------------------------------------------------------------------
 */

package projection

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Vivekray898/loanzaar-server/internal/metrics"
)

/* Subscriber is a callback receiving view snapshots */
type Subscriber func(ctx context.Context, view *View)

/* Backend propagates change notifications beyond this process */
type Backend interface {
	Publish(ctx context.Context, appID uuid.UUID) error
	Close() error
}

/* Feed manages view subscriptions and change fan-out */
type Feed struct {
	projector *Projector
	backends  []Backend

	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[int]Subscriber
	nextToken   int
}

/* NewFeed creates a change-feed over a projector */
func NewFeed(projector *Projector) *Feed {
	return &Feed{
		projector:   projector,
		subscribers: make(map[uuid.UUID]map[int]Subscriber),
	}
}

/* AddBackend registers a cross-instance notification backend. The
 * backend calls the returned handler for notifications originating on
 * other instances. */
func (f *Feed) AddBackend(backend Backend) func(ctx context.Context, appID uuid.UUID) {
	f.mu.Lock()
	f.backends = append(f.backends, backend)
	f.mu.Unlock()
	return f.dispatchLocal
}

/* Subscribe registers a callback for an application's view changes and
 * returns an unsubscribe handle. */
func (f *Feed) Subscribe(appID uuid.UUID, fn Subscriber) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subscribers[appID] == nil {
		f.subscribers[appID] = make(map[int]Subscriber)
	}
	token := f.nextToken
	f.nextToken++
	f.subscribers[appID][token] = fn
	metrics.SetFeedSubscribers(f.countSubscribersLocked())

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subscribers[appID], token)
			if len(f.subscribers[appID]) == 0 {
				delete(f.subscribers, appID)
			}
			metrics.SetFeedSubscribers(f.countSubscribersLocked())
		})
	}
}

/* ApplicationChanged implements the workflow notifier: it rebuilds the
 * view, delivers it to local subscribers, and propagates the change to
 * all backends. */
func (f *Feed) ApplicationChanged(ctx context.Context, appID uuid.UUID) {
	f.dispatchLocal(ctx, appID)

	f.mu.RLock()
	backends := f.backends
	f.mu.RUnlock()

	for _, backend := range backends {
		if err := backend.Publish(ctx, appID); err != nil {
			metrics.WarnWithContext(ctx, "Failed to publish change notification", map[string]interface{}{
				"application_id": appID.String(),
				"error":          err.Error(),
			})
		}
	}
}

/* dispatchLocal delivers the latest view snapshot to local subscribers */
func (f *Feed) dispatchLocal(ctx context.Context, appID uuid.UUID) {
	f.mu.RLock()
	subs := make([]Subscriber, 0, len(f.subscribers[appID]))
	for _, fn := range f.subscribers[appID] {
		subs = append(subs, fn)
	}
	f.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	view, err := f.projector.GetView(ctx, appID)
	if err != nil {
		metrics.WarnWithContext(ctx, "Failed to build view for change notification", map[string]interface{}{
			"application_id": appID.String(),
			"error":          err.Error(),
		})
		return
	}

	for _, fn := range subs {
		fn(ctx, view)
		metrics.RecordFeedNotification()
	}
}

/* Close closes all backends */
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var lastErr error
	for _, backend := range f.backends {
		if err := backend.Close(); err != nil {
			lastErr = err
		}
	}
	f.backends = nil
	return lastErr
}

func (f *Feed) countSubscribersLocked() int {
	count := 0
	for _, subs := range f.subscribers {
		count += len(subs)
	}
	return count
}
