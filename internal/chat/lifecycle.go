package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clchat/internal/database"
	"clchat/internal/models"
	"clchat/internal/presence"
	"clchat/pkg/logger"
)

// Lifecycle orchestrates connection join and disconnect: identity binding,
// room membership, backlog push and status broadcasts. Reconnecting is just
// running OnJoin again; unacknowledged delivery state lives in the store,
// not in the connection.
type Lifecycle struct {
	registry *presence.Registry
	rooms    *Membership
	messages database.MessageRepository
	users    database.UserRepository
	sender   Sender
	backlog  int

	mu    sync.Mutex
	bound map[string]string // connID -> userID
}

func NewLifecycle(registry *presence.Registry, rooms *Membership, messages database.MessageRepository, users database.UserRepository, sender Sender, backlog int) *Lifecycle {
	l := &Lifecycle{
		registry: registry,
		rooms:    rooms,
		messages: messages,
		users:    users,
		sender:   sender,
		backlog:  backlog,
		bound:    make(map[string]string),
	}
	registry.OnChange(l.presenceChanged)
	return l
}

// presenceChanged broadcasts a userStatus update whenever the registry
// mutates. The user's own connection is excluded on the way online; by the
// time they go offline there is no connection left to exclude.
func (l *Lifecycle) presenceChanged(user string, online bool, lastSeen time.Time) {
	payload := models.UserStatusPayload{User: user, Online: online}
	if !online {
		payload.LastSeen = &lastSeen
	}

	if online {
		if connID, ok := l.registry.Lookup(user); ok {
			l.sender.BroadcastExcept(connID, models.EventUserStatus, payload)
			return
		}
	}
	l.sender.Broadcast(models.EventUserStatus, payload)
}

// OnJoin binds the identity to the connection, joins the room and pushes a
// bounded backlog of recent room messages, oldest first, to the new
// connection only.
func (l *Lifecycle) OnJoin(ctx context.Context, connID, user, roomKey string) error {
	if user == "" || roomKey == "" {
		return fmt.Errorf("%w: room and user are required", ErrValidation)
	}

	l.mu.Lock()
	prev, rebound := l.bound[connID]
	l.bound[connID] = user
	l.mu.Unlock()

	// A connection that rebinds to a new identity releases the old one, or
	// the old user would stay online bound to a connection that no longer
	// speaks for them.
	if rebound && prev != user {
		l.registry.ClearIfMatches(prev, connID)
	}

	l.registry.SetOnline(user, connID)
	l.rooms.Join(connID, roomKey)

	if l.users != nil {
		go func() {
			if err := l.users.SetOnline(context.Background(), user, true, time.Now()); err != nil {
				logger.Error("Failed to persist online flag for %s: %v", user, err)
			}
		}()
	}

	backlog, err := l.messages.RoomMessages(ctx, roomKey, user, l.backlog)
	if err != nil {
		return fmt.Errorf("%w: loading backlog: %v", ErrUpstream, err)
	}
	if backlog == nil {
		backlog = []*models.Message{}
	}
	if err := l.sender.Send(connID, models.EventPreviousMessages, backlog); err != nil {
		logger.Debug("Backlog push to %s failed: %v", connID, err)
	}

	logger.Info("User %s joined room %s on connection %s", user, roomKey, connID)
	return nil
}

// OnDisconnect clears presence (guarded, so a stale disconnect cannot evict
// a newer connection) and removes the connection from all rooms. A
// connection that never completed a join needs no more than room cleanup.
func (l *Lifecycle) OnDisconnect(connID string) {
	l.mu.Lock()
	user, wasBound := l.bound[connID]
	delete(l.bound, connID)
	l.mu.Unlock()

	l.rooms.LeaveAll(connID)

	if !wasBound {
		return
	}

	cleared := l.registry.ClearIfMatches(user, connID)
	if cleared && l.users != nil {
		go func() {
			if err := l.users.SetOnline(context.Background(), user, false, time.Now()); err != nil {
				logger.Error("Failed to persist offline flag for %s: %v", user, err)
			}
		}()
	}

	logger.Info("Connection %s closed (user %s)", connID, user)
}

// BoundUser returns the identity bound to a connection, if any.
func (l *Lifecycle) BoundUser(connID string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	user, ok := l.bound[connID]
	return user, ok
}
