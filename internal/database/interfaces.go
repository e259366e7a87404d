package database

import (
	"context"
	"errors"
	"time"

	"clchat/internal/models"
)

// ErrNotFound is returned when a filter matches no document.
var ErrNotFound = errors.New("not found")

type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUsername(ctx context.Context, username, newUsername string) (*models.User, error)
	SetOnline(ctx context.Context, username string, online bool, lastSeen time.Time) error
	SetProfilePic(ctx context.Context, username, url string) (*models.User, error)
	AddFriend(ctx context.Context, username, friend string) ([]string, error)
	ListFriends(ctx context.Context, username string) ([]*models.User, error)
	AddSeenStory(ctx context.Context, username, storyID string) error
	SetPushSubscription(ctx context.Context, username string, sub map[string]interface{}) error
}

type MessageRepository interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id string) (*models.Message, error)
	// RoomMessages returns messages in a room oldest-first, excluding those
	// soft-deleted by viewer. limit <= 0 means no limit.
	RoomMessages(ctx context.Context, room, viewer string, limit int) ([]*models.Message, error)
	MarkDelivered(ctx context.Context, id string) (*models.Message, error)
	// MarkSeenInRoom transitions all unseen messages addressed to viewer in
	// the room to seen (and delivered), returning the number updated.
	MarkSeenInRoom(ctx context.Context, room, viewer string) (int64, error)
	HideMessage(ctx context.Context, id, user string) error
	DeleteMessage(ctx context.Context, id string) error
	// OfflineMessages returns undelivered messages addressed to user,
	// excluding those the user soft-deleted.
	OfflineMessages(ctx context.Context, user string) ([]*models.Message, error)
}

type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetStory(ctx context.Context, id string) (*models.Story, error)
	UpdateStory(ctx context.Context, id, content string, storyType models.StoryType) (*models.Story, error)
	DeleteStory(ctx context.Context, id string) error
	// ToggleLike adds the user's like, or removes it if already present.
	ToggleLike(ctx context.Context, id, user string) (int, error)
	AddStoryComment(ctx context.Context, id string, comment models.Comment) ([]models.Comment, error)
	MarkViewed(ctx context.Context, id, user string) (int, error)
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	ListPosts(ctx context.Context) ([]*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	AddPostComment(ctx context.Context, id string, comment models.Comment) (*models.Post, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, user string) ([]*models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

type Database interface {
	UserRepository
	MessageRepository
	StoryRepository
	PostRepository
	NotificationRepository
	Close(ctx context.Context) error
}
