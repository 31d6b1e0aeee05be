package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingPeriod   = (wsPongTimeout * 9) / 10
	wsReadLimit    = 1 << 12

	// Stream pacing: clients may ask for anything up to 10 Hz of the
	// engine tick; the default suits a dashboard chart.
	defaultStreamInterval = 1 * time.Second
	maxStreamInterval     = 10 * time.Second
	maxStreamIntervalMS   = 10_000
)

// stateEnvelope frames every message on the state stream.
type stateEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Upgrader for HTTP -> WebSocket. Consider tightening CheckOrigin in production.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins for production
}

// wsConnect upgrades the request and streams ventilator state snapshots at
// the client-chosen interval until the peer goes away. The dashboard's live
// phase and position display sits on this feed.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)
	ctx := c.Request.Context()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	// Drain the read side so control frames are processed and a peer
	// disconnect is noticed even though the stream is write-only.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// First snapshot goes out straight away; a dashboard should not sit
	// empty for a full interval after connecting.
	if err := h.writeState(ctx, conn); err != nil {
		return
	}

	states := time.NewTicker(interval)
	defer states.Stop()
	pings := time.NewTicker(wsPingPeriod)
	defer pings.Stop()

	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case <-pings.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-states.C:
			if err := h.writeState(ctx, conn); err != nil {
				return
			}
		}
	}
}

// parseInterval resolves the stream pace from ?interval (duration string) or
// ?interval_ms, in that order. Out-of-range and unparseable values fall back
// to the default rather than failing the upgrade.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxStreamInterval {
			return d
		}
	}
	if s := c.Query("interval_ms"); s != "" {
		if ms, err := strconv.Atoi(s); err == nil && ms > 0 && ms <= maxStreamIntervalMS {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultStreamInterval
}

// writeState pushes one state snapshot. Any failure, fetching or writing,
// tears the stream down; the client is expected to reconnect.
func (h *Handler) writeState(ctx context.Context, conn *websocket.Conn) error {
	st, err := h.services.Monitoring.State(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_state_fetch_failed", "err", err)
		}
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(stateEnvelope{Type: "state", Data: st}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed", "err", err)
		}
		return err
	}
	return nil
}
