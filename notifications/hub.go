package notifications

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"murmur/models"
	"murmur/observability"

	"github.com/gofiber/websocket/v2"
)

// Conn is the subset of a websocket connection the hub writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// RoomHub is a minimal websocket hub that maps roomID -> set of websocket
// connections. It listens for Redis pub/sub messages (via Notifier) and fans
// them out to clients watching that room.
type RoomHub struct {
	mu    sync.RWMutex
	conns map[string]map[Conn]struct{}
}

func NewRoomHub() *RoomHub {
	return &RoomHub{conns: make(map[string]map[Conn]struct{})}
}

// Register a connection for a given room
func (h *RoomHub) Register(roomID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.conns[roomID]
	if !ok {
		m = make(map[Conn]struct{})
		h.conns[roomID] = m
	}
	m[conn] = struct{}{}
	observability.WebSocketRoomConnections.WithLabelValues(roomID).Inc()
	observability.WebSocketConnectionsTotal.Inc()
}

// Unregister removes a connection
func (h *RoomHub) Unregister(roomID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m, ok := h.conns[roomID]; ok {
		if _, registered := m[conn]; !registered {
			return
		}
		delete(m, conn)
		if len(m) == 0 {
			delete(h.conns, roomID)
		}
		observability.WebSocketRoomConnections.WithLabelValues(roomID).Dec()
		observability.WebSocketConnectionsTotal.Dec()
	}
}

// Broadcast sends message to all connections watching roomID
func (h *RoomHub) Broadcast(roomID string, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if conns, ok := h.conns[roomID]; ok {
		for c := range conns {
			if err := c.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
				log.Printf("websocket write error: %v", err)
			}
		}
	}
}

// StartWiring connects the Notifier to this hub: it subscribes to the Redis
// room pattern and forwards payloads to connections watching that room.
func (h *RoomHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		// channel form: rooms:room:<id>
		roomID := strings.TrimPrefix(channel, "rooms:room:")
		if roomID == channel || roomID == "" {
			log.Printf("invalid room channel: %s", channel)
			return
		}
		var event models.RoomEvent
		if err := json.Unmarshal([]byte(payload), &event); err == nil && event.Type != "" {
			observability.RoomEventsTotal.WithLabelValues(event.Type).Inc()
		}
		h.Broadcast(roomID, payload)
	})
}

// Shutdown closes every connection in the hub.
func (h *RoomHub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, conns := range h.conns {
		for c := range conns {
			_ = c.Close()
			observability.WebSocketConnectionsTotal.Dec()
		}
		observability.WebSocketRoomConnections.DeleteLabelValues(roomID)
		delete(h.conns, roomID)
	}
	return nil
}
