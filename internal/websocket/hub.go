package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"clchat/internal/chat"
	"clchat/internal/models"
	"clchat/pkg/logger"
)

// Hub holds every open connection keyed by connection id and implements
// chat.Sender. Sends to a connection that is gone (or too slow to drain its
// buffer) fail without affecting anyone else.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

var _ chat.Sender = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

// unregister closes the send channel while still holding the lock. Frame
// sends happen under the read lock, so a send can never race the close.
func (h *Hub) unregister(connID string) {
	h.mu.Lock()
	if c, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		c.closeSend()
	}
	h.mu.Unlock()
}

func marshalFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	return json.Marshal(models.Envelope{Event: event, Data: data})
}

func (h *Hub) Send(connID, event string, payload interface{}) error {
	frame, err := marshalFrame(event, payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	c, ok := h.clients[connID]
	if !ok {
		h.mu.RUnlock()
		return fmt.Errorf("connection %s not registered", connID)
	}

	select {
	case c.send <- frame:
		h.mu.RUnlock()
		return nil
	default:
		h.mu.RUnlock()
		// Slow consumer: drop the connection rather than block fan-out.
		h.unregister(connID)
		return fmt.Errorf("connection %s send buffer full, evicted", connID)
	}
}

func (h *Hub) Broadcast(event string, payload interface{}) {
	h.BroadcastExcept("", event, payload)
}

func (h *Hub) BroadcastExcept(exceptConnID, event string, payload interface{}) {
	frame, err := marshalFrame(event, payload)
	if err != nil {
		logger.Error("Broadcast marshal error: %v", err)
		return
	}

	var evict []string
	h.mu.RLock()
	for id, c := range h.clients {
		if id == exceptConnID {
			continue
		}
		select {
		case c.send <- frame:
		default:
			evict = append(evict, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range evict {
		h.unregister(id)
	}
}

// ConnectionCount reports the number of open connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
