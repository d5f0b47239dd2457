/*-------------------------------------------------------------------------
 *
 * websocket.go
 *    WebSocket handler for application change subscriptions
 *
 * Pushes full view snapshots to subscribed clients whenever the
 * application they watch changes.
 *
 * Copyright (c) 2024-2026, Loanzaar <support@loanzaar.in>
 *
 * IDENTIFICATION
 *    internal/api/websocket.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Vivekray898/loanzaar-server/internal/metrics"
	"github.com/Vivekray898/loanzaar-server/internal/projection"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true /* Allow all origins in development */
	},
	HandshakeTimeout: 10 * time.Second,
}

const (
	/* WebSocket connection timeouts */
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

/* subscriptionConn tracks the state of a WebSocket subscription */
type subscriptionConn struct {
	conn   *websocket.Conn
	appID  uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
}

/* HandleSubscription upgrades the connection and streams view
 * snapshots for one application until the client disconnects */
func HandleSubscription(feed *projection.Feed, projector *projection.Projector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := GetRequestID(r.Context())

		appID, err := uuid.Parse(mux.Vars(r)["id"])
		if err != nil {
			respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid application ID", err), requestID))
			return
		}

		/* The application must exist before upgrading */
		if _, err := projector.GetView(r.Context(), appID); err != nil {
			respondError(w, mapWorkflowError(err, requestID))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			metrics.WarnWithContext(r.Context(), "WebSocket upgrade failed", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}

		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetReadLimit(maxMessageSize)
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		state := &subscriptionConn{
			conn:   conn,
			appID:  appID,
			ctx:    ctx,
			cancel: cancel,
		}

		unsubscribe := feed.Subscribe(appID, func(ctx context.Context, view *projection.View) {
			state.writeSnapshot(view)
		})
		defer unsubscribe()

		/* Initial snapshot so the client starts from current state */
		if view, err := projector.GetView(ctx, appID); err == nil {
			state.writeSnapshot(view)
		}

		go state.pingLoop()

		/* Drain reads until the client closes; pong handling keeps the
		 * read deadline fresh */
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		state.close()
	}
}

/* writeSnapshot serializes and sends a view, dropping the connection
 * on write failure */
func (s *subscriptionConn) writeSnapshot(view *projection.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(toViewResponse(view)); err != nil {
		s.closeLocked()
	}
}

func (s *subscriptionConn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				return
			}
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.closeLocked()
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *subscriptionConn) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

/* closeLocked requires s.mu held */
func (s *subscriptionConn) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.conn.Close()
}
