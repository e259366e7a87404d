package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clchat/internal/auth"
	"clchat/internal/chat"
	"clchat/internal/config"
	"clchat/internal/database"
	"clchat/internal/handlers"
	"clchat/internal/middleware"
	"clchat/internal/notify"
	"clchat/internal/presence"
	"clchat/internal/storage"
	"clchat/internal/websocket"
	"clchat/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	cancel()
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Initialize upload storage
	blobs, err := storage.NewDiskStore(cfg.Uploads.Dir, cfg.Uploads.BaseURL)
	if err != nil {
		logger.Fatal("Failed to initialize upload storage: %v", err)
	}

	// Initialize services
	authService := auth.NewService(db, cfg)
	pusher := notify.NewPusher(db)

	// Initialize realtime layer
	hub := websocket.NewHub()
	registry := presence.NewRegistry()
	rooms := chat.NewMembership()
	lifecycle := chat.NewLifecycle(registry, rooms, db, db, hub, cfg.Chat.BacklogLimit)
	pipeline := chat.NewPipeline(db, rooms, registry, hub, pusher)
	relay := chat.NewRelay(rooms, hub)
	dispatcher := chat.NewDispatcher(lifecycle, pipeline, relay, hub)

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(authService)
	userHandlers := handlers.NewUserHandlers(db, db, pipeline, authService)
	messageHandlers := handlers.NewMessageHandlers(pipeline, db, authService)
	storyHandlers := handlers.NewStoryHandlers(db, db, blobs, authService)
	postHandlers := handlers.NewPostHandlers(db, db)
	notificationHandlers := handlers.NewNotificationHandlers(db, db)
	wsHandlers := handlers.NewWebSocketHandlers(hub, dispatcher, lifecycle)

	// Rate limiting for the auth endpoints
	authLimiter := middleware.NewLimiterStore(cfg.Server.AuthRateRPM, cfg.Server.AuthRateRPM, 10*time.Minute)
	defer authLimiter.Stop()

	// Setup routes
	mux := http.NewServeMux()
	setupRoutes(mux, authLimiter, authHandlers, userHandlers, messageHandlers, storyHandlers, postHandlers, notificationHandlers, wsHandlers)

	// Static serving for uploaded media
	mux.Handle("GET "+cfg.Uploads.BaseURL+"/", http.StripPrefix(cfg.Uploads.BaseURL+"/", http.FileServer(http.Dir(blobs.Dir()))))

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	logger.Info("🚀 Server started on http://localhost%s", cfg.Server.Port)
	logger.Info("📡 WebSocket endpoint: ws://localhost%s/ws", cfg.Server.Port)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
	if err := db.Close(shutdownCtx); err != nil {
		logger.Error("Database close error: %v", err)
	}
}

func setupRoutes(
	mux *http.ServeMux,
	authLimiter *middleware.LimiterStore,
	authHandlers *handlers.AuthHandlers,
	userHandlers *handlers.UserHandlers,
	messageHandlers *handlers.MessageHandlers,
	storyHandlers *handlers.StoryHandlers,
	postHandlers *handlers.PostHandlers,
	notificationHandlers *handlers.NotificationHandlers,
	wsHandlers *handlers.WebSocketHandlers,
) {
	// Auth routes
	mux.HandleFunc("POST /api/register", middleware.RateLimit(authLimiter, authHandlers.Register))
	mux.HandleFunc("POST /api/login", middleware.RateLimit(authLimiter, authHandlers.Login))

	// User routes
	mux.HandleFunc("GET /api/users/{username}", userHandlers.Get)
	mux.HandleFunc("PUT /api/users/{username}", userHandlers.Update)
	mux.HandleFunc("PUT /api/users/{username}/profile-pic", userHandlers.SetProfilePic)
	mux.HandleFunc("GET /api/users/{username}/offline-messages", userHandlers.OfflineMessages)
	mux.HandleFunc("DELETE /api/users/{username}/history/{messageId}", userHandlers.HideMessage)
	mux.HandleFunc("GET /api/users/{username}/friends", userHandlers.ListFriends)
	mux.HandleFunc("POST /api/users/{username}/friends", userHandlers.AddFriend)

	// Message routes
	mux.HandleFunc("POST /api/messages/send", messageHandlers.Send)
	mux.HandleFunc("GET /api/messages/{user1}/{user2}", messageHandlers.Conversation)
	mux.HandleFunc("PUT /api/messages/{id}/delivered", messageHandlers.MarkDelivered)
	mux.HandleFunc("DELETE /api/messages/{id}", messageHandlers.Delete)

	// Story routes
	mux.HandleFunc("POST /api/stories", storyHandlers.Create)
	mux.HandleFunc("GET /api/stories/{id}", storyHandlers.Get)
	mux.HandleFunc("PUT /api/stories/{id}", storyHandlers.Update)
	mux.HandleFunc("DELETE /api/stories/{id}", storyHandlers.Delete)
	mux.HandleFunc("POST /api/stories/{id}/like", storyHandlers.Like)
	mux.HandleFunc("POST /api/stories/{id}/comment", storyHandlers.Comment)
	mux.HandleFunc("POST /api/stories/{id}/seen", storyHandlers.MarkSeen)
	mux.HandleFunc("GET /api/stories/{id}/viewers", storyHandlers.Viewers)

	// Post routes
	mux.HandleFunc("POST /api/posts", postHandlers.Create)
	mux.HandleFunc("GET /api/posts", postHandlers.List)
	mux.HandleFunc("DELETE /api/posts/{id}", postHandlers.Delete)
	mux.HandleFunc("POST /api/posts/{id}/comment", postHandlers.Comment)

	// Notification routes
	mux.HandleFunc("GET /api/notifications/{username}", notificationHandlers.List)
	mux.HandleFunc("PUT /api/notifications/{id}/read", notificationHandlers.MarkRead)
	mux.HandleFunc("POST /api/notifications/subscribe/{username}", notificationHandlers.Subscribe)

	// WebSocket route
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
