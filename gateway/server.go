// Package gateway is the real-time surface: it gates connections on a
// verified identity, dispatches socket events to the resolver and the
// broker, and serves the read-only history routes.
package gateway

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/UDAVALAPATISURESH/app-chat/auth"
	"github.com/UDAVALAPATISURESH/app-chat/contract"
	"github.com/UDAVALAPATISURESH/app-chat/errors"
	"github.com/UDAVALAPATISURESH/app-chat/runtime"
	"github.com/UDAVALAPATISURESH/app-chat/services"
)

type Gateway struct {
	log        *slog.Logger
	verifier   auth.IdentityVerifier
	rooms      services.IRoomService
	broker     *runtime.Broker
	registry   contract.IRegistry
	upgrader   websocket.Upgrader
	validate   *validator.Validate
	bufferSize int
}

func NewGateway(
	log *slog.Logger,
	verifier auth.IdentityVerifier,
	rooms services.IRoomService,
	broker *runtime.Broker,
	registry contract.IRegistry,
	bufferSize int,
) *Gateway {
	return &Gateway{
		log:      log,
		verifier: verifier,
		rooms:    rooms,
		broker:   broker,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		validate:   validator.New(),
		bufferSize: bufferSize,
	}
}

// Router wires the socket endpoint and the authenticated query routes.
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", g.handleWebSocket)

	r.Route("/api/chat", func(api chi.Router) {
		api.Use(g.bearerAuth)
		api.Get("/messages/{roomID}", g.handleMessages)
		api.Get("/archived/{roomID}", g.handleArchived)
	})

	return r
}

// handleWebSocket is the connection gate. Identity is verified before the
// upgrade: an unauthenticated request is rejected here and no event loop
// ever starts for it. On success the identity is bound to the connection
// for its lifetime, never re-checked per message.
func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, err := g.verifier.Verify(r.Context(), bearerToken(r))
	if err != nil {
		g.log.Warn("Rejected socket connection", "error", err)
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	conn := newConnection(user, ws, g.bufferSize, g.log)
	conn.log.Info("Socket connected")
	go conn.writePump()
	g.readLoop(conn)
}

// readLoop processes inbound events until the peer goes away. Disconnect
// drops every room subscription; sends already handed to the broker
// still complete for the remaining subscribers.
func (g *Gateway) readLoop(conn *connection) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		g.registry.UnsubscribeAll(conn.id)
		conn.close()
		conn.log.Info("Socket disconnected")
	}()

	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				conn.log.Warn("Socket read error", "error", err)
			}
			return
		}
		g.dispatch(ctx, conn, data)
	}
}

func (g *Gateway) dispatch(ctx context.Context, conn *connection, data []byte) {
	var envelope inboundEnvelope
	if err := sonic.Unmarshal(data, &envelope); err != nil {
		conn.sendError("malformed event")
		return
	}

	switch envelope.Event {
	case eventJoinRoom:
		g.onJoinRoom(ctx, conn, envelope.Data)
	case eventJoinGroup:
		g.onJoinGroup(ctx, conn, envelope.Data)
	case eventLeaveRoom:
		g.onLeaveRoom(conn, envelope.Data)
	case eventLeaveGroup:
		g.onLeaveGroup(conn, envelope.Data)
	case eventSendMessage:
		g.onSendPersonal(ctx, conn, envelope.Data)
	case eventSendGroup:
		g.onSendGroup(ctx, conn, envelope.Data)
	default:
		conn.sendError("unknown event")
	}
}

// bearerToken accepts the credential from the Authorization header or,
// for browser websocket clients that cannot set headers, a query param.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		const prefix = "Bearer "
		if len(header) > len(prefix) && header[:len(prefix)] == prefix {
			return header[len(prefix):]
		}
		return header
	}
	return r.URL.Query().Get("token")
}

// clientMessage maps an operation error to what the requester sees.
// Domain errors are self-describing; anything else stays internal.
func clientMessage(err error) string {
	for _, known := range []error{
		errors.ErrUserNotFound,
		errors.ErrGroupNotFound,
		errors.ErrNotGroupMember,
		errors.ErrEmptyMessage,
		errors.ErrMissingMedia,
		errors.ErrAmbiguousRecipient,
	} {
		if stderrors.Is(err, known) {
			return known.Error()
		}
	}
	if stderrors.Is(err, errors.ErrSendFailed) {
		return errors.ErrSendFailed.Error()
	}
	return "internal error"
}
