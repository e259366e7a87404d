package handlers

import (
	"encoding/json"
	"net/http"

	"clchat/internal/auth"
	"clchat/internal/chat"
	"clchat/internal/database"
	"clchat/internal/models"
)

type UserHandlers struct {
	users       database.UserRepository
	messages    database.MessageRepository
	pipeline    *chat.Pipeline
	authService *auth.Service
}

func NewUserHandlers(users database.UserRepository, messages database.MessageRepository, pipeline *chat.Pipeline, authService *auth.Service) *UserHandlers {
	return &UserHandlers{
		users:       users,
		messages:    messages,
		pipeline:    pipeline,
		authService: authService,
	}
}

func (h *UserHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.users.UpdateUsername(r.Context(), r.PathValue("username"), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Username updated", "user": user})
}

func (h *UserHandlers) SetProfilePic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfilePic string `json:"profilePic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProfilePic == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.users.SetProfilePic(r.Context(), r.PathValue("username"), req.ProfilePic)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Profile picture updated", "user": user})
}

// OfflineMessages returns the undelivered backlog for a user; durability
// for unreachable receivers comes from this query, not from resend loops.
func (h *UserHandlers) OfflineMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.OfflineMessages(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// HideMessage soft-deletes a message from this user's history only.
func (h *UserHandlers) HideMessage(w http.ResponseWriter, r *http.Request) {
	err := h.pipeline.SoftDelete(r.Context(), r.PathValue("messageId"), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Message deleted for user"})
}

func (h *UserHandlers) ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.users.ListFriends(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	if friends == nil {
		friends = []*models.User{}
	}
	writeJSON(w, http.StatusOK, friends)
}

func (h *UserHandlers) AddFriend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Friend string `json:"friend"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Friend == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	friends, err := h.users.AddFriend(r.Context(), r.PathValue("username"), req.Friend)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Friend added", "friends": friends})
}
