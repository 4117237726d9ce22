package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/aneedalie/meili/internal/metrics"
	"github.com/aneedalie/meili/internal/models"
	"github.com/aneedalie/meili/internal/session"
	"github.com/aneedalie/meili/internal/storage"
	"github.com/aneedalie/meili/internal/utils"
)

type Handlers struct {
	log       *utils.Logger
	hub       *session.Hub
	store     storage.Store
	jwtSecret []byte
}

func NewHandlers(log *utils.Logger, hub *session.Hub, store storage.Store, jwtSecret []byte) *Handlers {
	return &Handlers{log: log, hub: hub, store: store, jwtSecret: jwtSecret}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

/*** Trip session WebSocket ***/

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// TripWS upgrades the connection and pumps inbound frames into the hub.
// The deferred Disconnect covers every exit path, so a client that drops
// without leaving still gets its presence cleaned up exactly once.
func (h *Handlers) TripWS(w http.ResponseWriter, r *http.Request) {
	var authUserID string
	if len(h.jwtSecret) > 0 {
		claims, err := utils.ValidateTripToken(r.URL.Query().Get("token"), h.jwtSecret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		authUserID = claims.UserID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(conn)
	client.AuthUserID = authUserID
	metrics.ConnectionsOpen.Inc()
	defer metrics.ConnectionsOpen.Dec()
	defer h.hub.Disconnect(client)

	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		h.hub.HandleFrame(client, frame)
	}
}

/*** Trip record CRUD ***/

func (h *Handlers) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.store.ListTrips(r.Context())
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, trips)
}

func (h *Handlers) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var trip models.Trip
	if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := h.store.CreateTrip(r.Context(), trip)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, created)
}

func (h *Handlers) GetTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := h.store.FetchTripSnapshot(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, trip)
}

func (h *Handlers) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	var trip models.Trip
	if err := json.NewDecoder(r.Body).Decode(&trip); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if trip.ID != "" && trip.ID != tripID {
		utils.JSONError(w, http.StatusBadRequest, "trip id in path does not match body")
		return
	}
	trip.ID = tripID
	updated, err := h.store.UpdateTrip(r.Context(), trip)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, updated)
}

func (h *Handlers) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.store.FetchCards(r.Context(), chi.URLParam(r, "tripID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, cards)
}

func (h *Handlers) ListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.store.FetchThreads(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, threads)
}

func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.store.FetchMessages(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, messages)
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrTripNotFound),
		errors.Is(err, storage.ErrCardNotFound),
		errors.Is(err, storage.ErrThreadNotFound):
		utils.JSONError(w, http.StatusNotFound, err.Error())
	default:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}
