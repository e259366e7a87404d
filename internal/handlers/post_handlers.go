package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"clchat/internal/database"
	"clchat/internal/models"
)

type PostHandlers struct {
	posts database.PostRepository
	users database.UserRepository
}

func NewPostHandlers(posts database.PostRepository, users database.UserRepository) *PostHandlers {
	return &PostHandlers{posts: posts, users: users}
}

func (h *PostHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User  string `json:"user"`
		Text  string `json:"text"`
		Media string `json:"media"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Text == "" && req.Media == "" {
		http.Error(w, "post needs text or media", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), req.User)
	if err != nil {
		writeError(w, err)
		return
	}

	post := &models.Post{
		User:      user.Username,
		Text:      req.Text,
		Media:     req.Media,
		Online:    user.Online, // whether the author was online when posting
		CreatedAt: time.Now(),
	}
	if err := h.posts.CreatePost(r.Context(), post); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandlers) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.DeletePost(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

func (h *PostHandlers) Comment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User string `json:"user"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" || req.Text == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	post, err := h.posts.AddPostComment(r.Context(), r.PathValue("id"), models.Comment{
		User:      req.User,
		Text:      req.Text,
		CreatedAt: time.Now(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}
