package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketRoomHandler handles WebSocket connections for room event streams.
// Clients connect with ?room=<id>&token=<jwt> and receive the JSON RoomEvent
// payloads published for that room.
func (s *Server) WebSocketRoomHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		roomID := conn.Query("room")
		if roomID == "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"room parameter required"}`))
			_ = conn.Close()
			return
		}

		if s.roomHub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"room events unavailable"}`))
			_ = conn.Close()
			return
		}

		s.roomHub.Register(roomID, conn)
		defer s.roomHub.Unregister(roomID, conn)

		// Block reading until the client disconnects; the hub writes events.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("room websocket closed unexpectedly: %v", err)
				}
				return
			}
		}
	})
}
