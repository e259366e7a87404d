package handlers

import (
	"net/http"

	"clchat/internal/chat"
	ws "clchat/internal/websocket"
	"clchat/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	hub        *ws.Hub
	dispatcher *chat.Dispatcher
	lifecycle  *chat.Lifecycle
	upgrader   websocket.Upgrader
}

func NewWebSocketHandlers(hub *ws.Hub, dispatcher *chat.Dispatcher, lifecycle *chat.Lifecycle) *WebSocketHandlers {
	return &WebSocketHandlers{
		hub:        hub,
		dispatcher: dispatcher,
		lifecycle:  lifecycle,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket upgrades the connection and starts the client pumps. A
// connection carries no identity until its first joinRoom event binds one.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client, err := ws.NewClient(h.hub, conn, h.dispatcher, h.lifecycle)
	if err != nil {
		logger.Error("Error creating client: %v", err)
		conn.Close()
		return
	}

	logger.Debug("WebSocket connected: %s", client.ID())

	go client.WritePump()
	go client.ReadPump()
}
