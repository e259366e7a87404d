package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"clchat/internal/auth"
	"clchat/internal/database"
	"clchat/internal/models"
	"clchat/internal/storage"
	"clchat/pkg/logger"
)

const maxUploadBytes = 20 << 20

type StoryHandlers struct {
	stories     database.StoryRepository
	users       database.UserRepository
	blobs       *storage.DiskStore
	authService *auth.Service
}

func NewStoryHandlers(stories database.StoryRepository, users database.UserRepository, blobs *storage.DiskStore, authService *auth.Service) *StoryHandlers {
	return &StoryHandlers{
		stories:     stories,
		users:       users,
		blobs:       blobs,
		authService: authService,
	}
}

// Create accepts either a JSON body or a multipart upload whose file
// becomes the story content URL.
func (h *StoryHandlers) Create(w http.ResponseWriter, r *http.Request) {
	story := &models.Story{CreatedAt: time.Now()}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "invalid upload", http.StatusBadRequest)
			return
		}
		story.User = r.FormValue("user")
		story.Content = r.FormValue("content")
		story.Type = models.StoryType(r.FormValue("type"))

		if file, header, err := r.FormFile("file"); err == nil {
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
			if err != nil {
				http.Error(w, "invalid upload", http.StatusBadRequest)
				return
			}
			url, err := h.blobs.Store(data, header.Filename)
			if err != nil {
				writeError(w, err)
				return
			}
			story.Content = url
		}
	} else {
		var req struct {
			User    string           `json:"user"`
			Content string           `json:"content"`
			Type    models.StoryType `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		story.User = req.User
		story.Content = req.Content
		story.Type = req.Type
	}

	if story.User == "" || story.Content == "" {
		http.Error(w, "user and content are required", http.StatusBadRequest)
		return
	}
	if story.Type == "" {
		story.Type = models.StoryTypeText
	}

	if err := h.stories.CreateStory(r.Context(), story); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, story)
}

func (h *StoryHandlers) Get(w http.ResponseWriter, r *http.Request) {
	story, err := h.stories.GetStory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func (h *StoryHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string           `json:"content"`
		Type    models.StoryType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	story, err := h.stories.UpdateStory(r.Context(), r.PathValue("id"), req.Content, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

// Delete removes a story and, for media stories, its uploaded file. Only
// the owner may delete.
func (h *StoryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	requester, err := bearerUser(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	story, err := h.stories.GetStory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if story.User != requester {
		http.Error(w, "only the owner may delete a story", http.StatusForbidden)
		return
	}

	if err := h.stories.DeleteStory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	if story.Type != models.StoryTypeText {
		if err := h.blobs.Remove(story.Content); err != nil {
			logger.Warn("Could not remove story media %s: %v", story.Content, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Story deleted successfully"})
}

func (h *StoryHandlers) Like(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	likes, err := h.stories.ToggleLike(r.Context(), r.PathValue("id"), req.User)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

func (h *StoryHandlers) Comment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User  string `json:"user"`
		Text  string `json:"text"`
		Emoji string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	comments, err := h.stories.AddStoryComment(r.Context(), r.PathValue("id"), models.Comment{
		User:      req.User,
		Text:      req.Text,
		Emoji:     req.Emoji,
		CreatedAt: time.Now(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// MarkSeen records a viewer on the story and on the viewer's own seen list.
func (h *StoryHandlers) MarkSeen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	viewers, err := h.stories.MarkViewed(r.Context(), id, req.User)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.AddSeenStory(r.Context(), req.User, id); err != nil {
		logger.Warn("Could not record seen story for %s: %v", req.User, err)
	}

	writeJSON(w, http.StatusOK, map[string]int{"viewers": viewers})
}

func (h *StoryHandlers) Viewers(w http.ResponseWriter, r *http.Request) {
	story, err := h.stories.GetStory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	viewers := story.Viewers
	if viewers == nil {
		viewers = []string{}
	}
	writeJSON(w, http.StatusOK, viewers)
}
