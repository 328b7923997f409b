package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"hotel_ops/internal/models"
	"hotel_ops/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
	outBuffer  = 32
)

var defaultTopics = []string{
	realtime.TopicRooms,
	realtime.TopicSessions,
	realtime.TopicReports,
	realtime.TopicNotifications,
}

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Key   string      `json:"key,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Upgrader for HTTP -> WebSocket.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origins once the app's web build has a fixed host
}

// parseTopics reads ?topics=rooms,sessions. Unknown names are ignored; an
// empty result falls back to every topic.
func parseTopics(c *gin.Context) []string {
	known := map[string]bool{}
	for _, t := range defaultTopics {
		known[t] = true
	}
	var out []string
	seen := map[string]bool{}
	for _, t := range strings.Split(c.Query("topics"), ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if known[t] && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return defaultTopics
	}
	return out
}

// wsConnect streams hub events for the requested topics. The rooms topic
// opens with a snapshot of every room.
func (h *Handler) wsConnect(c *gin.Context) {
	topics := parseTopics(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()
	configureConn(conn)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	out := make(chan wsEnvelope, outBuffer)
	for _, topic := range topics {
		events, unsubscribe := h.hub.Subscribe(topic)
		defer unsubscribe()
		go forwardEvents(ctx, events, out)
	}

	for _, topic := range topics {
		if topic != realtime.TopicRooms {
			continue
		}
		rooms, err := h.services.Rooms.List(ctx)
		if err != nil {
			if h.log != nil {
				h.log.Errorw("ws_rooms_snapshot_failed", "err", err)
			}
			_ = writeEnvelope(conn, wsEnvelope{Type: "error", Error: "failed to load rooms"})
			return
		}
		if err := writeEnvelope(conn, wsEnvelope{Type: "rooms.snapshot", Data: rooms}); err != nil {
			if h.log != nil {
				h.log.Infow("ws_write_failed_initial", "err", err)
			}
			return
		}
	}

	h.pump(ctx, conn, out)
}

// wsDevice streams one device's availability and operator messages.
func (h *Handler) wsDevice(c *gin.Context) {
	deviceID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err, "device_id", deviceID)
		}
		return
	}
	defer func() { _ = conn.Close() }()
	configureConn(conn)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	out := make(chan wsEnvelope, outBuffer)
	send := func(env wsEnvelope) {
		select {
		case out <- env:
		case <-ctx.Done():
		}
	}

	stopAvailability, err := h.services.Devices.SubscribeAvailability(ctx, deviceID, func(available bool) {
		send(wsEnvelope{Type: "availability", Key: deviceID, Data: gin.H{"available": available}})
	})
	if err != nil {
		_ = writeEnvelope(conn, wsEnvelope{Type: "error", Error: err.Error()})
		return
	}
	defer stopAvailability()

	sub, err := h.services.Devices.SubscribeCustomMessage(ctx, deviceID,
		func(m models.CustomMessage) { send(wsEnvelope{Type: "message", Key: deviceID, Data: m}) },
		func() { send(wsEnvelope{Type: "message.clear", Key: deviceID}) },
	)
	if err != nil {
		_ = writeEnvelope(conn, wsEnvelope{Type: "error", Error: err.Error()})
		return
	}
	defer sub.Close()

	h.pump(ctx, conn, out)
}

func configureConn(conn *websocket.Conn) {
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

func forwardEvents(ctx context.Context, events <-chan realtime.Event, out chan<- wsEnvelope) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			select {
			case out <- wsEnvelope{Type: ev.Topic + "." + ev.Type, Key: ev.Key, Data: ev.Data}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// pump is the single writer: queued envelopes and pings until the peer
// goes away or ctx ends.
func (h *Handler) pump(ctx context.Context, conn *websocket.Conn, out <-chan wsEnvelope) {
	done := make(chan struct{})
	go h.startReader(conn, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case env := <-out:
			if err := writeEnvelope(conn, env); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
