// Package notify implements best-effort push notifications: the payload is
// persisted for the in-app notification list and failures are logged, never
// propagated to the caller.
package notify

import (
	"context"
	"time"

	"clchat/internal/database"
	"clchat/internal/models"
	"clchat/pkg/logger"
)

type Pusher struct {
	store database.NotificationRepository
}

func NewPusher(store database.NotificationRepository) *Pusher {
	return &Pusher{store: store}
}

func (p *Pusher) Notify(ctx context.Context, user, title, body, url string) {
	n := &models.Notification{
		User:      user,
		Title:     title,
		Body:      body,
		URL:       url,
		CreatedAt: time.Now(),
	}
	if err := p.store.CreateNotification(ctx, n); err != nil {
		logger.Warn("Push notification for %s dropped: %v", user, err)
		return
	}
	logger.Debug("Queued notification %s for %s", n.ID.Hex(), user)
}
