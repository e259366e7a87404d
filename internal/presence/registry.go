// Package presence tracks which user identities currently have a live
// connection. State is process-local; it is rebuilt from join signals after
// a restart.
package presence

import (
	"sync"
	"time"
)

// ChangeFunc is invoked after every mutation so the lifecycle layer can
// broadcast status updates. It is called outside the registry lock.
type ChangeFunc func(userID string, online bool, lastSeen time.Time)

// Registry binds each user identity to at most one connection id,
// last-write-wins.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]string
	lastSeen map[string]time.Time
	onChange ChangeFunc
}

func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[string]string),
		lastSeen: make(map[string]time.Time),
	}
}

// OnChange registers the presence-changed callback. Must be set before the
// registry receives traffic.
func (r *Registry) OnChange(fn ChangeFunc) {
	r.onChange = fn
}

// SetOnline records or overwrites the binding for userID. Idempotent for a
// repeated (userID, connID) pair.
func (r *Registry) SetOnline(userID, connID string) {
	r.mu.Lock()
	prev, had := r.conns[userID]
	r.conns[userID] = connID
	now := time.Now()
	r.lastSeen[userID] = now
	r.mu.Unlock()

	if had && prev == connID {
		return
	}
	if r.onChange != nil {
		r.onChange(userID, true, now)
	}
}

// ClearIfMatches removes the binding only when connID is still the one
// registered for userID. A stale disconnect must not evict a newer
// connection for the same identity.
func (r *Registry) ClearIfMatches(userID, connID string) bool {
	r.mu.Lock()
	current, ok := r.conns[userID]
	if !ok || current != connID {
		r.mu.Unlock()
		return false
	}
	delete(r.conns, userID)
	now := time.Now()
	r.lastSeen[userID] = now
	r.mu.Unlock()

	if r.onChange != nil {
		r.onChange(userID, false, now)
	}
	return true
}

func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.conns[userID]
	return connID, ok
}

func (r *Registry) ListOnlineIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

// LastSeen returns the time of the user's most recent presence change.
func (r *Registry) LastSeen(userID string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.lastSeen[userID]
	return t, ok
}
