package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"studyhub/internal/middleware"
	"studyhub/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// NotificationStreamHandler upgrades GET /ws/notifications and relays the caller's channel.
// The first frame is the current unread count; clients never send anything but control frames.
func (s *Server) NotificationStreamHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("userID").(uint)
		if !ok || uid == 0 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		stream, err := s.hub.Register(uid)
		if err != nil {
			middleware.Logger.Warn("Failed to register notification stream",
				slog.Uint64("user_id", uint64(uid)), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.Unregister(stream)

		s.sendUnreadSnapshot(conn, uid)

		done := make(chan struct{})
		go func() {
			defer close(done)
			readPump(conn)
		}()
		writePump(conn, stream, done)
	})
}

func (s *Server) sendUnreadSnapshot(conn *websocket.Conn, userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := s.notificationService.GetUnreadNotificationCount(ctx, userID)
	if err != nil {
		return
	}
	data, err := json.Marshal(notifications.Event{Type: "unread_count", Payload: map[string]int64{"count": count}})
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

// readPump drains incoming frames so pongs and the close handshake are processed.
func readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Debug("Notification stream read error", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump forwards stream messages and pings until the stream closes or the reader stops.
func writePump(conn *websocket.Conn, stream *notifications.Stream, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-stream.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
