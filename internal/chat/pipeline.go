package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"clchat/internal/database"
	"clchat/internal/models"
	"clchat/internal/presence"
	"clchat/pkg/logger"
)

// Notifier delivers best-effort push notifications to offline receivers.
// Failures are the implementation's problem; the pipeline never waits on or
// propagates them.
type Notifier interface {
	Notify(ctx context.Context, user, title, body, url string)
}

// Pipeline persists outbound messages and fans them out to the connections
// currently joined to the target room. Message state moves
// created -> delivered -> seen; only those flags and the per-viewer hidden
// set ever change after creation.
type Pipeline struct {
	store    database.MessageRepository
	rooms    *Membership
	registry *presence.Registry
	sender   Sender
	notifier Notifier

	mu          sync.Mutex
	lastCreated map[string]time.Time
	lastSeq     map[string]int64
}

func NewPipeline(store database.MessageRepository, rooms *Membership, registry *presence.Registry, sender Sender, notifier Notifier) *Pipeline {
	return &Pipeline{
		store:       store,
		rooms:       rooms,
		registry:    registry,
		sender:      sender,
		notifier:    notifier,
		lastCreated: make(map[string]time.Time),
		lastSeq:     make(map[string]int64),
	}
}

// nextStamp assigns a monotonic per-room creation time plus a sequence
// number to break ties, so catch-up reads sort stably regardless of how the
// store orders same-millisecond inserts.
func (p *Pipeline) nextStamp(roomKey string) (time.Time, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if last, ok := p.lastCreated[roomKey]; ok && now.Before(last) {
		now = last
	}
	p.lastCreated[roomKey] = now
	p.lastSeq[roomKey]++
	return now, p.lastSeq[roomKey]
}

// Send validates, persists and fans out a message. Offline receivers are
// not retried: they pick the message up from the store on their next join
// or offline-message fetch.
func (p *Pipeline) Send(ctx context.Context, sender, receiver, room, text, media string) (*models.Message, error) {
	if sender == "" {
		return nil, fmt.Errorf("%w: sender is required", ErrValidation)
	}
	if strings.TrimSpace(text) == "" && media == "" {
		return nil, fmt.Errorf("%w: message needs text or media", ErrValidation)
	}

	roomKey := ResolveRoomKey(sender, receiver, room)
	createdAt, seq := p.nextStamp(roomKey)

	msg := &models.Message{
		Room:      roomKey,
		Sender:    sender,
		Receiver:  receiver,
		Text:      text,
		Media:     media,
		Seq:       seq,
		CreatedAt: createdAt,
	}

	if err := p.store.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: saving message: %v", ErrUpstream, err)
	}

	p.fanOut(roomKey, models.EventNewMessage, msg)

	if receiver != "" && p.notifier != nil {
		if _, online := p.registry.Lookup(receiver); !online {
			body := text
			if body == "" {
				body = "Sent a media message"
			}
			p.notifier.Notify(ctx, receiver, "New Message", body, "/private-chat")
		}
	}

	return msg, nil
}

// MarkDelivered flips the delivered flag. Idempotent; a missing message is
// NotFound for the caller but never fatal to the connection.
func (p *Pipeline) MarkDelivered(ctx context.Context, messageID string) (*models.Message, error) {
	msg, err := p.store.MarkDelivered(ctx, messageID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: message %s", ErrNotFound, messageID)
		}
		return nil, fmt.Errorf("%w: marking delivered: %v", ErrUpstream, err)
	}
	return msg, nil
}

// MarkSeen bulk-transitions every unseen message addressed to viewer in the
// room, then broadcasts one messagesSeen event instead of one per message.
func (p *Pipeline) MarkSeen(ctx context.Context, roomKey, viewer string) error {
	if roomKey == "" || viewer == "" {
		return fmt.Errorf("%w: room and user are required", ErrValidation)
	}

	if _, err := p.store.MarkSeenInRoom(ctx, roomKey, viewer); err != nil {
		return fmt.Errorf("%w: marking seen: %v", ErrUpstream, err)
	}

	p.fanOut(roomKey, models.EventMessagesSeen, models.MessagesSeenPayload{User: viewer})
	return nil
}

// SoftDelete hides the message for the requester only; other viewers keep
// their history.
func (p *Pipeline) SoftDelete(ctx context.Context, messageID, requester string) error {
	err := p.store.HideMessage(ctx, messageID, requester)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: message %s", ErrNotFound, messageID)
	}
	if err != nil {
		return fmt.Errorf("%w: hiding message: %v", ErrUpstream, err)
	}
	return nil
}

// HardDelete removes the record entirely. Only the original sender may do
// this; peers get a messageDeleted event so they can retract their copy.
func (p *Pipeline) HardDelete(ctx context.Context, messageID, requester string) error {
	msg, err := p.store.GetMessage(ctx, messageID)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: message %s", ErrNotFound, messageID)
	}
	if err != nil {
		return fmt.Errorf("%w: loading message: %v", ErrUpstream, err)
	}

	if msg.Sender != requester {
		return fmt.Errorf("%w: only the sender may delete a message", ErrPermissionDenied)
	}

	if err := p.store.DeleteMessage(ctx, messageID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: message %s", ErrNotFound, messageID)
		}
		return fmt.Errorf("%w: deleting message: %v", ErrUpstream, err)
	}

	p.fanOut(msg.Room, models.EventMessageDeleted, models.MessageDeletedPayload{MessageID: messageID})
	return nil
}

// fanOut sends one event to every connection in the room. Each recipient is
// independent: a failed or departed connection is skipped, never blocking
// delivery to the rest.
func (p *Pipeline) fanOut(roomKey, event string, payload interface{}) {
	for _, connID := range p.rooms.MembersOf(roomKey) {
		if err := p.sender.Send(connID, event, payload); err != nil {
			logger.Debug("Skipping fan-out to %s in %s: %v", connID, roomKey, err)
		}
	}
}
