package chat

import (
	"sort"
	"testing"
)

func TestDirectRoomKeySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"zed", "amy"},
		{"same", "same"},
	}
	for _, p := range pairs {
		if DirectRoomKey(p[0], p[1]) != DirectRoomKey(p[1], p[0]) {
			t.Errorf("DirectRoomKey(%q, %q) not symmetric", p[0], p[1])
		}
	}

	if got := DirectRoomKey("bob", "alice"); got != "alice_bob" {
		t.Errorf("DirectRoomKey(bob, alice) = %q; want alice_bob", got)
	}
}

func TestResolveRoomKey(t *testing.T) {
	tests := []struct {
		sender, receiver, room, want string
	}{
		{"alice", "bob", "", "alice_bob"},
		{"alice", "bob", "ignored", "alice_bob"},
		{"alice", "", "lounge", "lounge"},
		{"alice", "", "", PublicRoom},
	}
	for _, tt := range tests {
		if got := ResolveRoomKey(tt.sender, tt.receiver, tt.room); got != tt.want {
			t.Errorf("ResolveRoomKey(%q, %q, %q) = %q; want %q", tt.sender, tt.receiver, tt.room, got, tt.want)
		}
	}
}

func TestMembershipJoinLeave(t *testing.T) {
	m := NewMembership()

	m.Join("c1", "room-a")
	m.Join("c2", "room-a")
	m.Join("c1", "room-b")

	members := m.MembersOf("room-a")
	sort.Strings(members)
	if len(members) != 2 || members[0] != "c1" || members[1] != "c2" {
		t.Fatalf("MembersOf(room-a) = %v; want [c1 c2]", members)
	}

	if !m.IsMember("c1", "room-b") {
		t.Fatal("c1 should be a member of room-b")
	}
	if m.IsMember("c2", "room-b") {
		t.Fatal("c2 should not be a member of room-b")
	}

	m.Leave("c1", "room-a")
	if m.IsMember("c1", "room-a") {
		t.Fatal("c1 should have left room-a")
	}
	if !m.IsMember("c1", "room-b") {
		t.Fatal("leaving room-a should not affect room-b membership")
	}
}

func TestMembershipLeaveAll(t *testing.T) {
	m := NewMembership()

	m.Join("c1", "room-a")
	m.Join("c1", "room-b")
	m.Join("c2", "room-a")

	m.LeaveAll("c1")

	if m.IsMember("c1", "room-a") || m.IsMember("c1", "room-b") {
		t.Fatal("LeaveAll should remove c1 from every room")
	}
	if got := m.MembersOf("room-a"); len(got) != 1 || got[0] != "c2" {
		t.Fatalf("MembersOf(room-a) = %v; want [c2]", got)
	}
	// room-b is implicitly gone once empty
	if got := m.MembersOf("room-b"); len(got) != 0 {
		t.Fatalf("MembersOf(room-b) = %v; want empty", got)
	}
}
