package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// connection binds one websocket to one verified identity for its whole
// lifetime. It is the EventSink the registry hands to the broker: every
// broadcast addressed to a subscribed room lands in the send queue and a
// single writer goroutine flushes it, as gorilla allows one writer only.
type connection struct {
	id   string
	user domain.User
	ws   *websocket.Conn
	send chan []byte
	log  *slog.Logger
	once sync.Once
	done chan struct{}
}

func newConnection(user domain.User, ws *websocket.Conn, bufferSize int, log *slog.Logger) *connection {
	return &connection{
		id:   uuid.NewString(),
		user: user,
		ws:   ws,
		send: make(chan []byte, bufferSize),
		log:  log.With("connection", ws.RemoteAddr().String(), "user", user.ID),
		done: make(chan struct{}),
	}
}

// Consume queues a room broadcast for delivery. It blocks at most until
// the broker's sink timeout: a full queue on a stalled connection must
// not hold up delivery to the rest of the room.
func (c *connection) Consume(ctx context.Context, payload domain.MessagePayload) error {
	data, err := sonic.Marshal(outboundEnvelope{Event: eventNewMessage, Data: payload})
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return websocket.ErrCloseSent
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sendEvent queues a requester-only event (join confirmations, errors).
// Best effort: a requester drowning in its own backlog just loses it.
func (c *connection) sendEvent(event string, data any) {
	payload, err := sonic.Marshal(outboundEnvelope{Event: event, Data: data})
	if err != nil {
		c.log.Error("Failed to encode outbound event", "event", event, "error", err)
		return
	}
	select {
	case c.send <- payload:
	case <-c.done:
	default:
		c.log.Warn("Send queue full, dropping event", "event", event)
	}
}

func (c *connection) sendError(message string) {
	c.sendEvent(eventError, errorPayload{Message: message})
}

// writePump is the single writer for the socket. It flushes the send
// queue and keeps the connection alive with periodic pings.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *connection) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}
