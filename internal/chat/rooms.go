package chat

import (
	"sync"
)

// PublicRoom is the broadcast channel for messages with no receiver.
const PublicRoom = "public"

// DirectRoomKey derives the canonical room key for a two-party
// conversation. Symmetric: DirectRoomKey(a, b) == DirectRoomKey(b, a).
func DirectRoomKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// ResolveRoomKey picks the target room for a message: the direct key when a
// receiver is named, otherwise the requested room, otherwise the public
// broadcast room.
func ResolveRoomKey(sender, receiver, room string) string {
	if receiver != "" {
		return DirectRoomKey(sender, receiver)
	}
	if room != "" {
		return room
	}
	return PublicRoom
}

// Membership tracks which connections are joined to which rooms. Rooms are
// implicit: created on first join, gone when the last member leaves.
type Membership struct {
	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
	conns map[string]map[string]struct{}
}

func NewMembership() *Membership {
	return &Membership{
		rooms: make(map[string]map[string]struct{}),
		conns: make(map[string]map[string]struct{}),
	}
}

func (m *Membership) Join(connID, roomKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rooms[roomKey] == nil {
		m.rooms[roomKey] = make(map[string]struct{})
	}
	m.rooms[roomKey][connID] = struct{}{}

	if m.conns[connID] == nil {
		m.conns[connID] = make(map[string]struct{})
	}
	m.conns[connID][roomKey] = struct{}{}
}

func (m *Membership) Leave(connID, roomKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(connID, roomKey)
}

// LeaveAll removes the connection from every room it joined, called on
// disconnect.
func (m *Membership) LeaveAll(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for roomKey := range m.conns[connID] {
		m.removeLocked(connID, roomKey)
	}
}

func (m *Membership) removeLocked(connID, roomKey string) {
	if members, ok := m.rooms[roomKey]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(m.rooms, roomKey)
		}
	}
	if rooms, ok := m.conns[connID]; ok {
		delete(rooms, roomKey)
		if len(rooms) == 0 {
			delete(m.conns, connID)
		}
	}
}

func (m *Membership) MembersOf(roomKey string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	members := make([]string, 0, len(m.rooms[roomKey]))
	for connID := range m.rooms[roomKey] {
		members = append(members, connID)
	}
	return members
}

// IsMember reports whether the connection is currently joined to the room.
func (m *Membership) IsMember(connID, roomKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.conns[connID][roomKey]
	return ok
}
