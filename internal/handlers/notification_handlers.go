package handlers

import (
	"encoding/json"
	"net/http"

	"clchat/internal/database"
	"clchat/internal/models"
)

type NotificationHandlers struct {
	notifications database.NotificationRepository
	users         database.UserRepository
}

func NewNotificationHandlers(notifications database.NotificationRepository, users database.UserRepository) *NotificationHandlers {
	return &NotificationHandlers{notifications: notifications, users: users}
}

func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.ListNotifications(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkNotificationRead(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification read"})
}

// Subscribe stores the browser push subscription on the user document.
func (h *NotificationHandlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var sub map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil || len(sub) == 0 {
		http.Error(w, "invalid subscription", http.StatusBadRequest)
		return
	}

	if err := h.users.SetPushSubscription(r.Context(), r.PathValue("username"), sub); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Subscribed successfully"})
}
