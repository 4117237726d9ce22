package session

import (
	"sync"

	"github.com/aneedalie/meili/internal/models"
)

// room holds one trip's occupant map and broadcast group. Occupancy
// (visible presence) and subscription (fan-out membership) are tracked
// separately so a joining connection can receive its private snapshot
// before it starts seeing room traffic.
type room struct {
	mu          sync.Mutex
	occupants   map[string]models.Presence
	subscribers map[string]*Client
}

func newRoom() *room {
	return &room{
		occupants:   make(map[string]models.Presence),
		subscribers: make(map[string]*Client),
	}
}

// Registry owns the mapping from room id to active presence records,
// keyed by connection id. Rooms are created lazily on first join and
// discarded when the last occupant leaves.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

func (reg *Registry) get(roomID string) (*room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[roomID]
	return r, ok
}

// Join inserts a presence record, creating the room entry if absent.
// Re-joining the same room overwrites the record for that connection.
func (reg *Registry) Join(roomID string, p models.Presence) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[roomID]
	if !ok {
		r = newRoom()
		reg.rooms[roomID] = r
	}
	r.mu.Lock()
	r.occupants[p.ConnectionID] = p
	r.mu.Unlock()
}

// Subscribe adds the connection to the room's broadcast group.
func (reg *Registry) Subscribe(roomID string, c *Client) {
	r, ok := reg.get(roomID)
	if !ok {
		return
	}
	r.mu.Lock()
	r.subscribers[c.ID] = c
	r.mu.Unlock()
}

// Leave removes the presence record and broadcast subscription for the
// connection. It reports existed=false when either the room or the entry
// is absent; callers treat that as a no-op, which makes the double-fire
// disconnect race harmless. An emptied room is deleted from the registry.
func (reg *Registry) Leave(roomID, connID string) (map[string]models.Presence, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.occupants[connID]; !ok {
		return nil, false
	}
	delete(r.occupants, connID)
	delete(r.subscribers, connID)
	if len(r.occupants) == 0 {
		delete(reg.rooms, roomID)
	}
	return snapshotOccupants(r.occupants), true
}

// Occupants returns a snapshot of the room's presence records, keyed by
// connection id. A missing room yields an empty map.
func (reg *Registry) Occupants(roomID string) map[string]models.Presence {
	r, ok := reg.get(roomID)
	if !ok {
		return map[string]models.Presence{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshotOccupants(r.occupants)
}

// Broadcast sends the frame to every subscriber of the room except the
// connection named by exceptConnID ("" sends to everyone).
func (reg *Registry) Broadcast(roomID, exceptConnID string, frame models.WSFrame) {
	r, ok := reg.get(roomID)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.subscribers {
		if id == exceptConnID {
			continue
		}
		c.Send(frame)
	}
}

// Rooms lists the ids of rooms with at least one occupant.
func (reg *Registry) Rooms() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	ids := make([]string, 0, len(reg.rooms))
	for id := range reg.rooms {
		ids = append(ids, id)
	}
	return ids
}

func (reg *Registry) RoomCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

func snapshotOccupants(src map[string]models.Presence) map[string]models.Presence {
	out := make(map[string]models.Presence, len(src))
	for id, p := range src {
		out[id] = p
	}
	return out
}
