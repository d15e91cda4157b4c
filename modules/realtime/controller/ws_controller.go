package controller

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"slotpoll/core/logger"
	"slotpoll/modules/realtime/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 16
)

// WSController upgrades viewers onto the event room channel.
type WSController struct {
	hub      *service.Hub
	upgrader websocket.Upgrader
}

func NewWSController(hub *service.Hub, allowedOrigins []string) *WSController {
	allowed := map[string]struct{}{}
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &WSController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

type wsSession struct {
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// Send queues data for the write pump without blocking; a slow consumer
// misses the snapshot and catches up on the next one. A broadcast can
// race the session's teardown, so sends check the closed flag under the
// mutex rather than relying on the hub having removed the session.
func (s *wsSession) Send(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
	}
}

// shutdown closes the send channel exactly once. After it returns, Send
// is a no-op and the write pump drains and exits.
func (s *wsSession) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// Join handles GET /events/:id/ws. The channel is broadcast-only: the
// client submits votes over HTTP and only listens here.
func (c *WSController) Join(ctx echo.Context) error {
	eventID := ctx.Param("id")
	if eventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing event id")
	}

	conn, err := c.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		logger.Error("WSController:Join upgrade", "event_id", eventID, "error", err)
		return nil
	}

	sess := &wsSession{conn: conn, send: make(chan []byte, sendBufferSize)}
	c.hub.JoinRoom(eventID, sess)

	go c.writePump(eventID, sess)
	c.readPump(eventID, sess)
	return nil
}

func (c *WSController) readPump(eventID string, s *wsSession) {
	defer func() {
		c.hub.LeaveRoom(eventID, s)
		s.shutdown()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(1024)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Inbound frames are discarded; the read loop exists to detect
		// closes and answer pings.
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *WSController) writePump(eventID string, s *wsSession) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
