package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"clchat/internal/database"
	"clchat/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type sentEvent struct {
	connID  string // for broadcasts, the excluded connection ("" = none)
	event   string
	payload interface{}
}

type fakeSender struct {
	mu         sync.Mutex
	sent       []sentEvent
	broadcasts []sentEvent
	failConns  map[string]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{failConns: make(map[string]bool)}
}

func (f *fakeSender) Send(connID, event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failConns[connID] {
		return errors.New("connection gone")
	}
	f.sent = append(f.sent, sentEvent{connID, event, payload})
	return nil
}

func (f *fakeSender) Broadcast(event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, sentEvent{"", event, payload})
}

func (f *fakeSender) BroadcastExcept(connID, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, sentEvent{connID, event, payload})
}

func (f *fakeSender) eventsFor(connID, event string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.sent {
		if e.connID == connID && e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeMessageStore struct {
	mu       sync.Mutex
	msgs     []*models.Message
	failSave bool
}

var _ database.MessageRepository = (*fakeMessageStore)(nil)

func (f *fakeMessageStore) SaveMessage(_ context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("store down")
	}
	msg.ID = bson.NewObjectID()
	stored := *msg
	f.msgs = append(f.msgs, &stored)
	return nil
}

func (f *fakeMessageStore) find(id string) *models.Message {
	for _, m := range f.msgs {
		if m.ID.Hex() == id {
			return m
		}
	}
	return nil
}

func (f *fakeMessageStore) GetMessage(_ context.Context, id string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m := f.find(id); m != nil {
		copy := *m
		return &copy, nil
	}
	return nil, database.ErrNotFound
}

func (f *fakeMessageStore) RoomMessages(_ context.Context, room, viewer string, limit int) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Message
	for _, m := range f.msgs {
		if m.Room != room {
			continue
		}
		if viewer != "" && m.HiddenFor(viewer) {
			continue
		}
		copy := *m
		out = append(out, &copy)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeMessageStore) MarkDelivered(_ context.Context, id string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.find(id)
	if m == nil {
		return nil, database.ErrNotFound
	}
	if !m.Delivered {
		m.Delivered = true
		now := time.Now()
		m.DeliveredAt = &now
	}
	copy := *m
	return &copy, nil
}

func (f *fakeMessageStore) MarkSeenInRoom(_ context.Context, room, viewer string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	now := time.Now()
	for _, m := range f.msgs {
		if m.Room == room && m.Receiver == viewer && !m.Seen {
			m.Seen = true
			m.SeenAt = &now
			m.Delivered = true
			if m.DeliveredAt == nil {
				m.DeliveredAt = &now
			}
			n++
		}
	}
	return n, nil
}

func (f *fakeMessageStore) HideMessage(_ context.Context, id, user string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.find(id)
	if m == nil {
		return database.ErrNotFound
	}
	if !m.HiddenFor(user) {
		m.DeletedBy = append(m.DeletedBy, user)
	}
	return nil
}

func (f *fakeMessageStore) DeleteMessage(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.msgs {
		if m.ID.Hex() == id {
			f.msgs = append(f.msgs[:i], f.msgs[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeMessageStore) OfflineMessages(_ context.Context, user string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Message
	for _, m := range f.msgs {
		if m.Receiver == user && !m.Delivered && !m.HiddenFor(user) {
			copy := *m
			out = append(out, &copy)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string // "user|body"
}

func (f *fakeNotifier) Notify(_ context.Context, user, title, body, url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, user+"|"+body)
}
