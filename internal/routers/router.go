package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aneedalie/meili/internal/api"
)

func New(h *api.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/api/v1/healthz", h.Health)

	r.Route("/api/v1/trips", func(r chi.Router) {
		r.Get("/", h.ListTrips)
		r.Post("/", h.CreateTrip)
		r.Get("/{tripID}", h.GetTrip)
		r.Put("/{tripID}", h.UpdateTrip)
		r.Get("/{tripID}/cards", h.ListCards)
	})
	r.Get("/api/v1/cards/{cardID}/threads", h.ListThreads)
	r.Get("/api/v1/threads/{threadID}/messages", h.ListMessages)

	r.Get("/ws", h.TripWS)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
