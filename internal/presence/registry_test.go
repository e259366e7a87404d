package presence

import (
	"sort"
	"testing"
	"time"
)

func TestRegistry_SetOnlineAndLookup(t *testing.T) {
	r := NewRegistry()

	r.SetOnline("alice", "c1")

	connID, ok := r.Lookup("alice")
	if !ok || connID != "c1" {
		t.Fatalf("Lookup(alice) = %q, %v; want c1, true", connID, ok)
	}

	// Last write wins
	r.SetOnline("alice", "c2")
	connID, _ = r.Lookup("alice")
	if connID != "c2" {
		t.Fatalf("Lookup(alice) after overwrite = %q; want c2", connID)
	}
}

func TestRegistry_ClearIfMatchesGuardsNewerBinding(t *testing.T) {
	r := NewRegistry()

	r.SetOnline("alice", "c1")
	r.SetOnline("alice", "c2") // reconnect before old socket's disconnect fires

	// Stale disconnect for c1 must not evict the newer c2 binding.
	if cleared := r.ClearIfMatches("alice", "c1"); cleared {
		t.Fatal("stale ClearIfMatches evicted a newer binding")
	}
	if _, ok := r.Lookup("alice"); !ok {
		t.Fatal("alice should still be online after stale clear")
	}

	if cleared := r.ClearIfMatches("alice", "c2"); !cleared {
		t.Fatal("matching ClearIfMatches should clear the binding")
	}
	if _, ok := r.Lookup("alice"); ok {
		t.Fatal("alice should be offline after matching clear")
	}
}

func TestRegistry_ClearUnknownUser(t *testing.T) {
	r := NewRegistry()
	if r.ClearIfMatches("ghost", "c1") {
		t.Fatal("clearing an unknown user should report false")
	}
}

func TestRegistry_ListOnlineIDs(t *testing.T) {
	r := NewRegistry()

	events := []struct {
		join   bool
		user   string
		connID string
	}{
		{true, "alice", "c1"},
		{true, "bob", "c2"},
		{true, "carol", "c3"},
		{false, "bob", "c2"},
		{true, "bob", "c4"},
		{false, "carol", "c3"},
	}

	for _, e := range events {
		if e.join {
			r.SetOnline(e.user, e.connID)
		} else {
			r.ClearIfMatches(e.user, e.connID)
		}
	}

	got := r.ListOnlineIDs()
	sort.Strings(got)
	want := []string{"alice", "bob"}
	if len(got) != len(want) {
		t.Fatalf("ListOnlineIDs() = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ListOnlineIDs() = %v; want %v", got, want)
		}
	}
}

func TestRegistry_OnChangeNotifications(t *testing.T) {
	r := NewRegistry()

	type change struct {
		user   string
		online bool
	}
	var changes []change
	r.OnChange(func(user string, online bool, _ time.Time) {
		changes = append(changes, change{user, online})
	})

	r.SetOnline("alice", "c1")
	r.SetOnline("alice", "c1") // idempotent, no second notification
	r.ClearIfMatches("alice", "c1")
	r.ClearIfMatches("alice", "c1") // already cleared, no notification

	want := []change{{"alice", true}, {"alice", false}}
	if len(changes) != len(want) {
		t.Fatalf("got %d change notifications, want %d: %v", len(changes), len(want), changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("change %d = %v; want %v", i, changes[i], want[i])
		}
	}
}
