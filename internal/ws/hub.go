package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// conn is one client connection. Writes are serialized through mu per the
// gorilla single-writer rule.
type conn struct {
	id     string
	origin string
	ws     *websocket.Conn
	mu     sync.Mutex
}

func (c *conn) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

// Hub tracks live connections and fans out broadcast frames.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*conn
}

// NewHub creates an empty connection hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]*conn)}
}

func (h *Hub) register(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.id] = c
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c.id)
}

// Broadcast writes payload to every live connection. Write failures are
// left to each connection's own read loop to clean up.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	targets := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.write(payload) //nolint:errcheck
	}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll closes every live connection.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.conns {
		c.ws.Close()
		delete(h.conns, id)
	}
}
