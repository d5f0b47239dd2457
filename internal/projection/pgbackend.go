/*-------------------------------------------------------------------------
 *
 * pgbackend.go
 *    PostgreSQL LISTEN/NOTIFY change-feed backend
 *
 * Propagates application change notifications across server instances
 * via pg_notify so subscribers on any instance converge on the latest
 * view.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/projection/pgbackend.go
 *
 *-------------------------------------------------------------------------
 */

package projection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Vivekray898/loanzaar-server/internal/metrics"
)

const changeChannel = "loanzaar_application_changed"

/* PostgresBackend implements Backend using PostgreSQL LISTEN/NOTIFY */
type PostgresBackend struct {
	db       *sqlx.DB
	listener *pq.Listener
	onChange func(ctx context.Context, appID uuid.UUID)
	stopChan chan struct{}
	stopOnce sync.Once
}

/* NewPostgresBackend creates a LISTEN/NOTIFY backend and starts its
 * listening goroutine. The onChange handler receives notifications
 * published by other instances. */
func NewPostgresBackend(db *sqlx.DB, connStr string, onChange func(ctx context.Context, appID uuid.UUID)) (*PostgresBackend, error) {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			metrics.WarnWithContext(context.Background(), "PostgreSQL LISTEN error", map[string]interface{}{
				"event": int(ev),
				"error": err.Error(),
			})
		}
	}

	listener := pq.NewListener(connStr, 10*time.Second, time.Minute, reportProblem)
	if err := listener.Listen(changeChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", changeChannel, err)
	}

	backend := &PostgresBackend{
		db:       db,
		listener: listener,
		onChange: onChange,
		stopChan: make(chan struct{}),
	}
	go backend.listenLoop()
	return backend, nil
}

/* AttachPostgres wires a LISTEN/NOTIFY backend into the feed so change
 * notifications from other instances reach local subscribers */
func (f *Feed) AttachPostgres(db *sqlx.DB, connStr string) (*PostgresBackend, error) {
	backend, err := NewPostgresBackend(db, connStr, f.dispatchLocal)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.backends = append(f.backends, backend)
	f.mu.Unlock()
	return backend, nil
}

/* Publish sends a change notification via pg_notify */
func (b *PostgresBackend) Publish(ctx context.Context, appID uuid.UUID) error {
	_, err := b.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, changeChannel, appID.String())
	if err != nil {
		return fmt.Errorf("pg_notify failed: %w", err)
	}
	return nil
}

/* listenLoop receives NOTIFY events and dispatches them */
func (b *PostgresBackend) listenLoop() {
	ctx := context.Background()
	for {
		select {
		case <-b.stopChan:
			return
		case notification := <-b.listener.Notify:
			if notification == nil {
				continue
			}
			appID, err := uuid.Parse(notification.Extra)
			if err != nil {
				metrics.WarnWithContext(ctx, "Invalid change notification payload", map[string]interface{}{
					"channel": notification.Channel,
					"payload": notification.Extra,
				})
				continue
			}
			if b.onChange != nil {
				b.onChange(ctx, appID)
			}
		}
	}
}

/* Close stops the listener */
func (b *PostgresBackend) Close() error {
	b.stopOnce.Do(func() { close(b.stopChan) })
	return b.listener.Close()
}
