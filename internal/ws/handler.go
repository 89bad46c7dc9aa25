package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/crossstore/hub/internal/broker"
	"github.com/crossstore/hub/internal/infrastructure/logging"
	"github.com/crossstore/hub/internal/infrastructure/monitoring"
	"github.com/crossstore/hub/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin clients are the point; authorization happens
		// per-request in the broker.
		return true
	},
}

// Handler upgrades connections and pumps messages through the broker.
type Handler struct {
	hub       *Hub
	broker    *broker.Broker
	available bool
	logger    *logging.Logger
	metrics   *monitoring.Metrics
}

// NewHandler creates a websocket handler. available reports whether a
// usable storage backend exists; when false the handler announces
// unavailability and never installs the listener.
func NewHandler(hub *Hub, b *broker.Broker, available bool, logger *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		hub:       hub,
		broker:    b,
		available: available,
		logger:    logger,
		metrics:   metrics,
	}
}

// HandleConnection handles the websocket upgrade and the per-connection
// message loop.
func (h *Handler) HandleConnection(c *gin.Context) {
	socket, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &conn{
		id:     uuid.NewString(),
		origin: protocol.NormalizeOrigin(c.GetHeader("Origin")),
		ws:     socket,
	}
	h.hub.register(client)
	if h.metrics != nil {
		h.metrics.ConnectionOpened()
	}
	h.logger.Info("Client connected",
		zap.String("conn_id", client.id),
		zap.String("origin", client.origin),
	)

	defer func() {
		h.hub.unregister(client)
		socket.Close()
		if h.metrics != nil {
			h.metrics.ConnectionClosed()
		}
		h.logger.Info("Client disconnected", zap.String("conn_id", client.id))
	}()

	if !h.available {
		client.write([]byte(protocol.ControlUnavailable)) //nolint:errcheck
		h.drain(socket)
		return
	}

	if err := client.write([]byte(protocol.ControlReady)); err != nil {
		return
	}

	reqCtx := c.Request.Context()
	for {
		_, payload, err := socket.ReadMessage()
		if err != nil {
			return
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in")
		}

		out := h.broker.Handle(reqCtx, client.origin, payload)
		if out == nil {
			continue
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("out")
		}

		if out.Broadcast {
			h.hub.Broadcast(out.Payload)
			continue
		}
		if err := client.write(out.Payload); err != nil {
			return
		}
	}
}

// drain reads and discards messages until the peer goes away. Used when no
// storage backend is available and the listener was never installed.
func (h *Handler) drain(socket *websocket.Conn) {
	for {
		if _, _, err := socket.ReadMessage(); err != nil {
			return
		}
	}
}
