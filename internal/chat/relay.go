package chat

import (
	"clchat/internal/models"
	"clchat/pkg/logger"
)

// Relay forwards ephemeral signals to room peers. Nothing is persisted and
// there is no delivery guarantee.
type Relay struct {
	rooms  *Membership
	sender Sender
}

func NewRelay(rooms *Membership, sender Sender) *Relay {
	return &Relay{rooms: rooms, sender: sender}
}

// Typing relays a typing indicator to every other member of the room. A
// signal from a connection that is not in the room is dropped silently.
func (r *Relay) Typing(originConn, roomKey, user string, isTyping bool) {
	if !r.rooms.IsMember(originConn, roomKey) {
		return
	}

	payload := models.DisplayTypingPayload{User: user, IsTyping: isTyping}
	for _, connID := range r.rooms.MembersOf(roomKey) {
		if connID == originConn {
			continue
		}
		if err := r.sender.Send(connID, models.EventDisplayTyping, payload); err != nil {
			logger.Debug("Dropping typing signal to %s: %v", connID, err)
		}
	}
}
