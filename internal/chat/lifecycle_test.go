package chat

import (
	"context"
	"testing"

	"clchat/internal/models"
	"clchat/internal/presence"
)

func newTestLifecycle(store *fakeMessageStore, sender *fakeSender) (*Lifecycle, *Pipeline, *presence.Registry, *Membership) {
	registry := presence.NewRegistry()
	rooms := NewMembership()
	lc := NewLifecycle(registry, rooms, store, nil, sender, 50)
	pipe := NewPipeline(store, rooms, registry, sender, nil)
	return lc, pipe, registry, rooms
}

func TestLifecycleJoinPushesBacklogToNewConnectionOnly(t *testing.T) {
	store := &fakeMessageStore{}
	sender := newFakeSender()
	lc, pipe, _, _ := newTestLifecycle(store, sender)
	ctx := context.Background()

	if err := lc.OnJoin(ctx, "connA", "alice", DirectRoomKey("alice", "bob")); err != nil {
		t.Fatalf("OnJoin: %v", err)
	}
	if _, err := pipe.Send(ctx, "alice", "bob", "", "hi bob", ""); err != nil {
		t.Fatal(err)
	}

	if err := lc.OnJoin(ctx, "connB", "bob", DirectRoomKey("bob", "alice")); err != nil {
		t.Fatalf("OnJoin(bob): %v", err)
	}

	backlogs := sender.eventsFor("connB", "previousMessages")
	if len(backlogs) != 1 {
		t.Fatalf("previousMessages to connB = %d; want 1", len(backlogs))
	}
	msgs := backlogs[0].payload.([]*models.Message)
	if len(msgs) != 1 || msgs[0].Text != "hi bob" {
		t.Fatalf("backlog = %v; want the pending message", msgs)
	}

	// alice's earlier backlog was empty and hers alone
	aliceBacklogs := sender.eventsFor("connA", "previousMessages")
	if len(aliceBacklogs) != 1 {
		t.Fatalf("previousMessages to connA = %d; want 1", len(aliceBacklogs))
	}
	if got := aliceBacklogs[0].payload.([]*models.Message); len(got) != 0 {
		t.Fatalf("alice joined an empty room, backlog = %v", got)
	}
}

func TestLifecycleOfflineDeliveryScenario(t *testing.T) {
	store := &fakeMessageStore{}
	sender := newFakeSender()
	lc, pipe, _, _ := newTestLifecycle(store, sender)
	ctx := context.Background()
	room := DirectRoomKey("alice", "bob")

	// A joins and sends while B is offline
	if err := lc.OnJoin(ctx, "connA", "alice", room); err != nil {
		t.Fatal(err)
	}
	msg, err := pipe.Send(ctx, "alice", "bob", "", "hi", "")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Delivered {
		t.Fatal("message to an offline receiver must remain undelivered")
	}

	// Offline query picks it up
	offline, _ := store.OfflineMessages(ctx, "bob")
	if len(offline) != 1 {
		t.Fatalf("offline messages for bob = %d; want 1", len(offline))
	}

	// B joins later, fetches backlog, marks seen
	if err := lc.OnJoin(ctx, "connB", "bob", room); err != nil {
		t.Fatal(err)
	}
	backlogs := sender.eventsFor("connB", "previousMessages")
	if len(backlogs) != 1 || len(backlogs[0].payload.([]*models.Message)) != 1 {
		t.Fatal("bob's backlog should contain the pending message")
	}

	if err := pipe.MarkSeen(ctx, room, "bob"); err != nil {
		t.Fatal(err)
	}

	// A receives the seen event
	seen := sender.eventsFor("connA", "messagesSeen")
	if len(seen) != 1 {
		t.Fatalf("messagesSeen to connA = %d; want 1", len(seen))
	}
	if got := seen[0].payload.(models.MessagesSeenPayload).User; got != "bob" {
		t.Fatalf("messagesSeen user = %q; want bob", got)
	}

	stored, _ := store.GetMessage(ctx, msg.ID.Hex())
	if !stored.Delivered || !stored.Seen {
		t.Fatalf("after markSeen: delivered=%v seen=%v; want both true", stored.Delivered, stored.Seen)
	}
}

func TestLifecycleDisconnectClearsPresenceAndRooms(t *testing.T) {
	store := &fakeMessageStore{}
	sender := newFakeSender()
	lc, _, registry, rooms := newTestLifecycle(store, sender)
	ctx := context.Background()

	if err := lc.OnJoin(ctx, "connA", "alice", "lounge"); err != nil {
		t.Fatal(err)
	}
	lc.OnDisconnect("connA")

	if _, online := registry.Lookup("alice"); online {
		t.Fatal("alice should be offline after disconnect")
	}
	if rooms.IsMember("connA", "lounge") {
		t.Fatal("disconnect should leave all rooms")
	}

	// userStatus broadcasts: online (excluding connA) then offline
	if len(sender.broadcasts) != 2 {
		t.Fatalf("broadcasts = %d; want 2", len(sender.broadcasts))
	}
	online := sender.broadcasts[0].payload.(models.UserStatusPayload)
	if !online.Online || sender.broadcasts[0].connID != "connA" {
		t.Fatal("online status should be broadcast to everyone but the joining connection")
	}
	offline := sender.broadcasts[1].payload.(models.UserStatusPayload)
	if offline.Online || offline.LastSeen == nil {
		t.Fatal("offline status must carry a last-seen timestamp")
	}
}

func TestLifecycleStaleDisconnectKeepsNewerConnectionOnline(t *testing.T) {
	store := &fakeMessageStore{}
	sender := newFakeSender()
	lc, _, registry, _ := newTestLifecycle(store, sender)
	ctx := context.Background()

	if err := lc.OnJoin(ctx, "conn1", "alice", "lounge"); err != nil {
		t.Fatal(err)
	}
	// alice reconnects before the old socket's disconnect is processed
	if err := lc.OnJoin(ctx, "conn2", "alice", "lounge"); err != nil {
		t.Fatal(err)
	}
	lc.OnDisconnect("conn1")

	connID, online := registry.Lookup("alice")
	if !online || connID != "conn2" {
		t.Fatalf("alice should still be online on conn2, got %q/%v", connID, online)
	}

	// No offline broadcast was emitted for the stale disconnect
	for _, b := range sender.broadcasts {
		if p, ok := b.payload.(models.UserStatusPayload); ok && !p.Online {
			t.Fatal("stale disconnect must not broadcast an offline status")
		}
	}
}

func TestLifecycleRebindReleasesPreviousIdentity(t *testing.T) {
	store := &fakeMessageStore{}
	sender := newFakeSender()
	lc, _, registry, _ := newTestLifecycle(store, sender)
	ctx := context.Background()

	if err := lc.OnJoin(ctx, "conn1", "alice", "lounge"); err != nil {
		t.Fatal(err)
	}
	// Same connection joins again as a different user
	if err := lc.OnJoin(ctx, "conn1", "bob", "lounge"); err != nil {
		t.Fatal(err)
	}

	if _, online := registry.Lookup("alice"); online {
		t.Fatal("alice should go offline when her connection rebinds to bob")
	}
	if connID, online := registry.Lookup("bob"); !online || connID != "conn1" {
		t.Fatalf("bob should be online on conn1, got %q/%v", connID, online)
	}

	lc.OnDisconnect("conn1")

	if _, online := registry.Lookup("alice"); online {
		t.Fatal("alice must not linger online after the connection closed")
	}
	if _, online := registry.Lookup("bob"); online {
		t.Fatal("bob should be offline after disconnect")
	}
	if got := registry.ListOnlineIDs(); len(got) != 0 {
		t.Fatalf("registry should be empty, got %v", got)
	}
}

func TestLifecycleAnonymousDisconnect(t *testing.T) {
	store := &fakeMessageStore{}
	sender := newFakeSender()
	lc, _, _, _ := newTestLifecycle(store, sender)

	// A connection that never joined: cleanup only, no broadcast
	lc.OnDisconnect("ghost")

	if len(sender.broadcasts) != 0 {
		t.Fatalf("anonymous disconnect broadcast %d events; want 0", len(sender.broadcasts))
	}
}

func TestLifecycleJoinValidation(t *testing.T) {
	store := &fakeMessageStore{}
	lc, _, _, _ := newTestLifecycle(store, newFakeSender())

	if err := lc.OnJoin(context.Background(), "connA", "", "lounge"); err == nil {
		t.Fatal("join without a user should fail validation")
	}
	if err := lc.OnJoin(context.Background(), "connA", "alice", ""); err == nil {
		t.Fatal("join without a room should fail validation")
	}
}
