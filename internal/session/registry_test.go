package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/aneedalie/meili/internal/models"
)

func presence(connID, userID string) models.Presence {
	return models.Presence{ConnectionID: connID, UserID: userID, DisplayName: userID}
}

func TestRegistryJoinAndOccupants(t *testing.T) {
	reg := NewRegistry()
	reg.Join("trip-1", presence("c1", "alice"))
	reg.Join("trip-1", presence("c2", "bob"))

	occ := reg.Occupants("trip-1")
	if len(occ) != 2 {
		t.Fatalf("expected 2 occupants, got %d", len(occ))
	}
	if occ["c1"].UserID != "alice" || occ["c2"].UserID != "bob" {
		t.Fatalf("unexpected occupants: %#v", occ)
	}
}

func TestRegistryJoinIsIdempotentPerConnection(t *testing.T) {
	reg := NewRegistry()
	reg.Join("trip-1", presence("c1", "alice"))
	reg.Join("trip-1", models.Presence{ConnectionID: "c1", UserID: "alice", DisplayName: "Alice A."})

	occ := reg.Occupants("trip-1")
	if len(occ) != 1 {
		t.Fatalf("expected 1 occupant after re-join, got %d", len(occ))
	}
	if occ["c1"].DisplayName != "Alice A." {
		t.Fatalf("expected re-join to overwrite record, got %#v", occ["c1"])
	}
}

func TestRegistrySameUserMultipleConnections(t *testing.T) {
	reg := NewRegistry()
	reg.Join("trip-1", presence("c1", "alice"))
	reg.Join("trip-1", presence("c2", "alice"))

	if occ := reg.Occupants("trip-1"); len(occ) != 2 {
		t.Fatalf("two tabs of the same user should each count, got %d", len(occ))
	}
}

func TestRegistryLeaveIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Join("trip-1", presence("c1", "alice"))
	reg.Join("trip-1", presence("c2", "bob"))

	remaining, existed := reg.Leave("trip-1", "c1")
	if !existed {
		t.Fatalf("expected first leave to find the connection")
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining occupant, got %d", len(remaining))
	}

	if _, existed := reg.Leave("trip-1", "c1"); existed {
		t.Fatalf("duplicate leave must be a no-op")
	}
	if len(reg.Occupants("trip-1")) != 1 {
		t.Fatalf("duplicate leave must not decrement twice")
	}
}

func TestRegistryLeaveUnknownRoom(t *testing.T) {
	reg := NewRegistry()
	if _, existed := reg.Leave("nowhere", "c1"); existed {
		t.Fatalf("leave on unknown room must report existed=false")
	}
}

func TestRegistryEmptyRoomIsEvicted(t *testing.T) {
	reg := NewRegistry()
	reg.Join("trip-1", presence("c1", "alice"))

	if _, existed := reg.Leave("trip-1", "c1"); !existed {
		t.Fatalf("expected leave to succeed")
	}
	if rooms := reg.Rooms(); len(rooms) != 0 {
		t.Fatalf("empty room should be absent from enumeration, got %v", rooms)
	}

	// Rejoining the emptied room id succeeds with a fresh entry.
	reg.Join("trip-1", presence("c2", "bob"))
	if occ := reg.Occupants("trip-1"); len(occ) != 1 {
		t.Fatalf("expected fresh room with 1 occupant, got %d", len(occ))
	}
}

func TestRegistryBroadcastExcludesSender(t *testing.T) {
	reg := NewRegistry()
	sender := NewClient(nil)
	sender.SetSendHook(func(models.WSFrame) { t.Fatal("sender should not receive broadcast") })
	peer := NewClient(nil)
	capture := newFrameCapture()
	peer.SetSendHook(capture.hook)

	reg.Join("trip-1", presence(sender.ID, "alice"))
	reg.Subscribe("trip-1", sender)
	reg.Join("trip-1", presence(peer.ID, "bob"))
	reg.Subscribe("trip-1", peer)

	reg.Broadcast("trip-1", sender.ID, models.WSFrame{Type: "updateCard"})

	if got := capture.list(); len(got) != 1 || got[0].Type != "updateCard" {
		t.Fatalf("peer missing frame: %#v", got)
	}
}

func TestRegistryBroadcastToAll(t *testing.T) {
	reg := NewRegistry()
	c1 := NewClient(nil)
	cap1 := newFrameCapture()
	c1.SetSendHook(cap1.hook)
	c2 := NewClient(nil)
	cap2 := newFrameCapture()
	c2.SetSendHook(cap2.hook)

	reg.Join("trip-1", presence(c1.ID, "alice"))
	reg.Subscribe("trip-1", c1)
	reg.Join("trip-1", presence(c2.ID, "bob"))
	reg.Subscribe("trip-1", c2)

	reg.Broadcast("trip-1", "", models.WSFrame{Type: "presenceUpdate"})

	if len(cap1.list()) != 1 || len(cap2.list()) != 1 {
		t.Fatalf("expected broadcast to reach all subscribers")
	}
}

func TestRegistryOccupantsSnapshotIsIndependent(t *testing.T) {
	reg := NewRegistry()
	reg.Join("trip-1", presence("c1", "alice"))

	occ := reg.Occupants("trip-1")
	delete(occ, "c1")

	if len(reg.Occupants("trip-1")) != 1 {
		t.Fatalf("mutating a snapshot must not affect the registry")
	}
}

func TestRegistryConcurrentJoinLeave(t *testing.T) {
	reg := NewRegistry()
	const workers = 32

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			roomID := fmt.Sprintf("trip-%d", i%4)
			connID := fmt.Sprintf("c%d", i)
			reg.Join(roomID, presence(connID, "user"))
			reg.Occupants(roomID)
			reg.Leave(roomID, connID)
		}(i)
	}
	wg.Wait()

	if rooms := reg.Rooms(); len(rooms) != 0 {
		t.Fatalf("all rooms should be empty and evicted, got %v", rooms)
	}
}
