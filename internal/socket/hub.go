package socket

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type client struct {
	conn *websocket.Conn
	role string
}

// Hub tracks all connected WebSocket clients. Drivers get direct
// pushes keyed by user ID; admin consoles receive role broadcasts so
// their shipment tables can refetch on change.
type Hub struct {
	clients map[string]*client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

// Register adds a client connection under its user ID.
func (h *Hub) Register(userID, role string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = &client{conn: conn, role: role}
	logrus.WithFields(logrus.Fields{"user": userID, "role": role}).Debug("websocket client registered")
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; ok {
		delete(h.clients, userID)
		logrus.WithField("user", userID).Debug("websocket client unregistered")
	}
}

// Send writes a message to one client. A missing client is not an
// error; it just means that user is offline.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[userID]
	if !ok {
		return nil
	}
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// Broadcast writes a message to every client holding the given role.
// Individual write failures are logged and skipped.
func (h *Hub) Broadcast(role string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for userID, c := range h.clients {
		if c.role != role {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logrus.WithError(err).WithField("user", userID).Warn("websocket broadcast write failed")
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
