package session

import (
	"context"
	"encoding/json"

	"github.com/aneedalie/meili/internal/metrics"
	"github.com/aneedalie/meili/internal/models"
	"github.com/aneedalie/meili/internal/storage"
	"github.com/aneedalie/meili/internal/utils"
)

// Event names on the wire. Inbound and relayed mutation events share the
// same name, so the relay can forward frames under the type they came in as.
const (
	EventJoin           = "join"
	EventLeave          = "leave"
	EventUpdateCard     = "updateCard"
	EventAddCard        = "addCard"
	EventRenameTrip     = "renameTrip"
	EventAddMessage     = "addMessage"
	EventAddThread      = "addThread"
	EventSnapshot       = "snapshot"
	EventPresenceUpdate = "presenceUpdate"
	EventError          = "error"
)

// Hub orchestrates connection sessions against the room registry. Each
// inbound mutation is persisted through the storage gateway before it is
// broadcast, so relayed payloads always reflect durable state.
type Hub struct {
	registry *Registry
	store    storage.Gateway
	log      *utils.Logger
}

func NewHub(store storage.Gateway, log *utils.Logger) *Hub {
	return &Hub{
		registry: NewRegistry(),
		store:    store,
		log:      log,
	}
}

func (h *Hub) Registry() *Registry { return h.registry }

// HandleFrame dispatches one inbound frame from the connection's read
// loop. Gateway calls run on a background context: a transport disconnect
// must not cancel a write that is already in flight.
func (h *Hub) HandleFrame(c *Client, frame models.WSFrame) {
	switch frame.Type {
	case EventJoin:
		var req models.JoinRequest
		decode(frame.Data, &req)
		h.Join(c, req)
	case EventUpdateCard, EventAddCard:
		var ev models.CardEvent
		decode(frame.Data, &ev)
		h.RelayCard(c, frame.Type, ev)
	case EventRenameTrip:
		var ev models.RenameEvent
		decode(frame.Data, &ev)
		h.RenameTrip(c, ev)
	case EventAddMessage:
		var ev models.MessageEvent
		decode(frame.Data, &ev)
		h.AddMessage(c, ev)
	case EventAddThread:
		var ev models.ThreadEvent
		decode(frame.Data, &ev)
		h.AddThread(c, ev)
	case EventLeave:
		h.Disconnect(c)
	default:
		c.Send(models.WSFrame{Type: EventError, Data: models.ErrorAck{
			Event:  frame.Type,
			Reason: "unknown_event",
		}})
	}
}

// Join runs the join/snapshot protocol: fetch the trip document and its
// cards, register presence, deliver the private snapshot, subscribe the
// connection to room fan-out, then announce the updated occupant set to
// the whole room. Presence is never registered for a room whose snapshot
// could not be fetched.
func (h *Hub) Join(c *Client, req models.JoinRequest) {
	if c.AuthUserID != "" {
		req.UserID = c.AuthUserID
	}
	if req.TripID == "" || req.UserID == "" {
		h.log.Warn("dropping malformed join", "conn", c.ID)
		metrics.EventsDropped.WithLabelValues(EventJoin, "validation").Inc()
		return
	}

	// A connection joined to a different room is implicitly moved: leave
	// the old room (with its presence broadcast) before joining the new.
	if cur := c.Room(); cur != "" && cur != req.TripID {
		h.Disconnect(c)
	}

	ctx := context.Background()
	trip, err := h.store.FetchTripSnapshot(ctx, req.TripID)
	if err != nil {
		h.ackFailure(c, EventJoin, req.TripID, err)
		return
	}
	cards, err := h.store.FetchCards(ctx, req.TripID)
	if err != nil {
		h.ackFailure(c, EventJoin, req.TripID, err)
		return
	}
	metrics.SnapshotFetches.Inc()

	h.registry.Join(req.TripID, models.Presence{
		ConnectionID: c.ID,
		UserID:       req.UserID,
		DisplayName:  req.DisplayName,
		AvatarURL:    req.AvatarURL,
	})
	c.setRoom(req.TripID)

	c.Send(models.WSFrame{Type: EventSnapshot, Data: models.Snapshot{
		Trip:   *trip,
		Events: cards,
	}})

	h.registry.Subscribe(req.TripID, c)
	h.broadcastPresence(req.TripID, h.registry.Occupants(req.TripID))
	metrics.RoomsActive.Set(float64(h.registry.RoomCount()))
	h.log.Info("connection joined trip", "conn", c.ID, "trip", req.TripID, "user", req.UserID)
}

// RelayCard persists a card add or update, then forwards the confirmed
// card to every other subscriber of the trip's room. The two event kinds
// share one relay path; only the receiving client's merge semantics
// (insert vs. replace) differ, and that is the client's business.
func (h *Hub) RelayCard(c *Client, event string, ev models.CardEvent) {
	if ev.TripID == "" || ev.Card == nil || (event == EventUpdateCard && ev.Card.ID == "") {
		h.dropMalformed(c, event)
		return
	}
	card, err := h.store.UpsertCard(context.Background(), ev.TripID, *ev.Card)
	if err != nil {
		h.ackFailure(c, event, ev.TripID, err)
		return
	}
	h.registry.Broadcast(ev.TripID, c.ID, models.WSFrame{Type: event, Data: card})
	metrics.EventsRelayed.WithLabelValues(event).Inc()
}

func (h *Hub) RenameTrip(c *Client, ev models.RenameEvent) {
	if ev.TripID == "" || ev.Name == "" {
		h.dropMalformed(c, EventRenameTrip)
		return
	}
	trip, err := h.store.RenameTrip(context.Background(), ev.TripID, ev.Name)
	if err != nil {
		h.ackFailure(c, EventRenameTrip, ev.TripID, err)
		return
	}
	h.registry.Broadcast(ev.TripID, c.ID, models.WSFrame{Type: EventRenameTrip, Data: models.RenameEvent{
		TripID: trip.ID,
		Name:   trip.Name,
	}})
	metrics.EventsRelayed.WithLabelValues(EventRenameTrip).Inc()
}

func (h *Hub) AddMessage(c *Client, ev models.MessageEvent) {
	if ev.TripID == "" || ev.ThreadID == "" || ev.Message == nil {
		h.dropMalformed(c, EventAddMessage)
		return
	}
	msg, err := h.store.AppendMessage(context.Background(), ev.ThreadID, *ev.Message)
	if err != nil {
		h.ackFailure(c, EventAddMessage, ev.TripID, err)
		return
	}
	h.registry.Broadcast(ev.TripID, c.ID, models.WSFrame{Type: EventAddMessage, Data: msg})
	metrics.EventsRelayed.WithLabelValues(EventAddMessage).Inc()
}

func (h *Hub) AddThread(c *Client, ev models.ThreadEvent) {
	if ev.TripID == "" || ev.CardID == "" || ev.Thread == nil {
		h.dropMalformed(c, EventAddThread)
		return
	}
	thread, err := h.store.AppendThread(context.Background(), ev.CardID, *ev.Thread)
	if err != nil {
		h.ackFailure(c, EventAddThread, ev.TripID, err)
		return
	}
	h.registry.Broadcast(ev.TripID, c.ID, models.WSFrame{Type: EventAddThread, Data: thread})
	metrics.EventsRelayed.WithLabelValues(EventAddThread).Inc()
}

// Disconnect is the single idempotent cleanup for both an explicit leave
// and a transport-level close. A connection that never joined, or whose
// registry entry is already gone, is a no-op: the transport fires its
// disconnect notification regardless of whether a join ever happened.
func (h *Hub) Disconnect(c *Client) {
	roomID := c.Room()
	if roomID == "" {
		return
	}
	c.setRoom("")
	occupants, existed := h.registry.Leave(roomID, c.ID)
	if !existed {
		h.log.Info("disconnect for connection already removed", "conn", c.ID, "trip", roomID)
		return
	}
	h.broadcastPresence(roomID, occupants)
	metrics.RoomsActive.Set(float64(h.registry.RoomCount()))
	h.log.Info("connection left trip", "conn", c.ID, "trip", roomID)
}

func (h *Hub) broadcastPresence(roomID string, occupants map[string]models.Presence) {
	h.registry.Broadcast(roomID, "", models.WSFrame{Type: EventPresenceUpdate, Data: models.PresenceUpdate{
		UsersConnected: occupants,
	}})
}

func (h *Hub) dropMalformed(c *Client, event string) {
	h.log.Warn("dropping malformed event", "event", event, "conn", c.ID)
	metrics.EventsDropped.WithLabelValues(event, "validation").Inc()
}

// ackFailure reports a failed persistence call to the originating
// connection only; the mutation is never broadcast.
func (h *Hub) ackFailure(c *Client, event, tripID string, err error) {
	h.log.Error("storage call failed", "event", event, "trip", tripID, "error", err)
	metrics.EventsDropped.WithLabelValues(event, "storage").Inc()
	c.Send(models.WSFrame{Type: EventError, Data: models.ErrorAck{
		Event:  event,
		TripID: tripID,
		Reason: err.Error(),
	}})
}

func decode(in any, out any) { b, _ := json.Marshal(in); _ = json.Unmarshal(b, out) }
