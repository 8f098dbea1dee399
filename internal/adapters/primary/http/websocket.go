package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be shorter than pongWait
	maxMessageSize = 512
	sendQueue      = 64
)

// previewConn pumps hub events to one browser tab
type previewConn struct {
	sub    *Subscriber
	conn   *websocket.Conn
	hub    *Hub
	logger *slog.Logger
}

// handleWebSocket upgrades a preview page and subscribes it to build events.
// The page is greeted with the current slide count before anything else.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	policy := newOriginPolicy(s.config)
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if policy.allows(origin) {
				return true
			}
			s.logger.Warn("WebSocket origin rejected", slog.String("origin", origin))
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordWebSocketConnection()
	}

	sub := &Subscriber{
		ID:     uuid.NewString(),
		Remote: r.RemoteAddr,
		Send:   make(chan ports.UpdateEvent, sendQueue),
	}
	slides := 0
	if deck := s.Deck(); deck != nil {
		slides = deck.SlideCount()
	}
	sub.Send <- ports.UpdateEvent{
		Type:      ports.EventTypeConnected,
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"client": sub.ID, "slides": slides},
	}

	hub := s.currentHub()
	pc := &previewConn{
		sub:    sub,
		conn:   conn,
		hub:    hub,
		logger: s.logger.With(slog.String("client", sub.ID)),
	}
	hub.Join(sub)

	go pc.writeLoop()
	go pc.readLoop()
}

// readLoop only keeps the connection alive; pages never send commands
func (c *previewConn) readLoop() {
	defer func() {
		c.hub.Leave(c.sub.ID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("Preview connection closed", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writeLoop sends queued events and keeps the peer alive with pings. A
// closed queue means the hub dropped this page.
func (c *previewConn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.sub.Send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "preview stopped"))
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
