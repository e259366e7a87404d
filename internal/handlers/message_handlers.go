package handlers

import (
	"encoding/json"
	"net/http"

	"clchat/internal/auth"
	"clchat/internal/chat"
	"clchat/internal/database"
	"clchat/internal/models"
)

type MessageHandlers struct {
	pipeline    *chat.Pipeline
	messages    database.MessageRepository
	authService *auth.Service
}

func NewMessageHandlers(pipeline *chat.Pipeline, messages database.MessageRepository, authService *auth.Service) *MessageHandlers {
	return &MessageHandlers{
		pipeline:    pipeline,
		messages:    messages,
		authService: authService,
	}
}

// Send persists and fans out a message through the same pipeline the socket
// path uses, so REST sends reach online peers too.
func (h *MessageHandlers) Send(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessagePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	msg, err := h.pipeline.Send(r.Context(), req.Sender, req.Receiver, req.Room, req.Text, req.Media)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// Conversation returns the private history between two users, oldest first.
func (h *MessageHandlers) Conversation(w http.ResponseWriter, r *http.Request) {
	user1 := r.PathValue("user1")
	user2 := r.PathValue("user2")

	// Soft-deleted messages stay hidden for the authenticated viewer only.
	viewer, _ := bearerUser(r, h.authService)

	room := chat.DirectRoomKey(user1, user2)
	msgs, err := h.messages.RoomMessages(r.Context(), room, viewer, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}

	writeJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandlers) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	msg, err := h.pipeline.MarkDelivered(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	requester, err := bearerUser(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.pipeline.HardDelete(r.Context(), r.PathValue("id"), requester); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted successfully"})
}
