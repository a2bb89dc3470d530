// Package observability defines the Prometheus metrics exported by the
// application beyond the per-route HTTP metrics the Fiber middleware records.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocketRoomConnections is the gauge of connections per room.
	WebSocketRoomConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "murmur_websocket_room_connections",
		Help: "Number of WebSocket connections per room",
	}, []string{"room_id"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "murmur_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// RoomEventsTotal counts room events fanned out to subscribers by type.
	RoomEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_room_events_total",
		Help: "Total number of room events broadcast to subscribers",
	}, []string{"event_type"})

	// CacheRequests counts cache lookups by outcome (hit or miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "murmur_cache_requests_total",
		Help: "Total number of cache lookups by outcome",
	}, []string{"outcome"})
)
