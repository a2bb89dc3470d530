package server

import (
	"errors"
	"log"

	"murmur/models"
	"murmur/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateRoom handles POST /api/rooms
func (s *Server) CreateRoom(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title is required"))
	}

	room := &models.Room{
		HostID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.RoomScheduled,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	room, err := s.roomRepo.GetByID(ctx, room.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(room)
}

// GetLiveRooms handles GET /api/rooms
func (s *Server) GetLiveRooms(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	rooms, err := s.roomRepo.ListLive(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(rooms)
}

// GetRoom handles GET /api/rooms/:id
func (s *Server) GetRoom(c *fiber.Ctx) error {
	id := c.Params("id")

	room, err := s.roomRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Room", id))
	}

	return c.JSON(room)
}

// StartRoom handles POST /api/rooms/:id/start. Only the host can start a room;
// starting also joins the host as a speaker.
func (s *Server) StartRoom(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	roomID := c.Params("id")

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Room", roomID))
	}
	if room.HostID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only the host can start a room"))
	}

	if err := s.roomRepo.Start(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotLive) {
			return models.RespondWithError(c, fiber.StatusConflict,
				models.NewConflictError("Room is not in a startable state"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if _, err := s.roomRepo.Join(ctx, roomID, userID, models.RoleHost); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.publishRoomEvent(c, models.RoomEvent{RoomID: roomID, Type: "started", UserID: userID})

	room, err = s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(room)
}

// JoinRoom handles POST /api/rooms/:id/join
func (s *Server) JoinRoom(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	roomID := c.Params("id")

	participant, err := s.roomRepo.Join(ctx, roomID, userID, models.RoleListener)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Room", roomID))
		case errors.Is(err, repository.ErrRoomNotLive):
			return models.RespondWithError(c, fiber.StatusConflict,
				models.NewConflictError("Room is not live"))
		default:
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	s.publishRoomEvent(c, models.RoomEvent{
		RoomID: roomID, Type: "joined", UserID: userID, Role: participant.Role,
	})

	return c.JSON(participant)
}

// LeaveRoom handles POST /api/rooms/:id/leave
func (s *Server) LeaveRoom(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	roomID := c.Params("id")

	if err := s.roomRepo.Leave(ctx, roomID, userID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.publishRoomEvent(c, models.RoomEvent{RoomID: roomID, Type: "left", UserID: userID})

	return c.SendStatus(fiber.StatusNoContent)
}

// EndRoom handles POST /api/rooms/:id/end. Only the host can end a room.
func (s *Server) EndRoom(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	roomID := c.Params("id")

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Room", roomID))
	}
	if room.HostID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only the host can end a room"))
	}

	if err := s.roomRepo.End(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotLive) {
			return models.RespondWithError(c, fiber.StatusConflict,
				models.NewConflictError("Room is not live"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.publishRoomEvent(c, models.RoomEvent{RoomID: roomID, Type: "ended", UserID: userID})

	room, err = s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(room)
}

// publishRoomEvent is best-effort; room state is authoritative in the
// database, the event stream is only a hint to connected clients.
func (s *Server) publishRoomEvent(c *fiber.Ctx, event models.RoomEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishRoomEvent(c.Context(), event); err != nil {
		log.Printf("room event publish failed: %v", err)
	}
}
