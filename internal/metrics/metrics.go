package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meili_ws_connections_open",
			Help: "Currently open websocket connections",
		},
	)

	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meili_rooms_active",
			Help: "Rooms with at least one occupant",
		},
	)

	EventsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meili_events_relayed_total",
			Help: "Mutation events persisted and broadcast",
		},
		[]string{"event"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meili_events_dropped_total",
			Help: "Inbound events dropped before broadcast",
		},
		[]string{"event", "reason"}, // reason: "validation" or "storage"
	)

	SnapshotFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meili_snapshot_fetches_total",
			Help: "Trip snapshots fetched for joining connections",
		},
	)
)
