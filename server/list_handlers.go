package server

import (
	"murmur/models"

	"github.com/gofiber/fiber/v2"
)

// CreateList handles POST /api/lists
func (s *Server) CreateList(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}

	list := &models.List{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.listRepo.Create(ctx, list); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(list)
}

// GetMyLists handles GET /api/lists
func (s *Server) GetMyLists(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	lists, err := s.listRepo.GetByOwner(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(lists)
}

// GetList handles GET /api/lists/:id
func (s *Server) GetList(c *fiber.Ctx) error {
	id := c.Params("id")

	list, err := s.listRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("List", id))
	}

	return c.JSON(list)
}

// UpdateList handles PUT /api/lists/:id
func (s *Server) UpdateList(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	id := c.Params("id")

	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("List", id))
	}
	if list.OwnerID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only update your own lists"))
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name != nil {
		list.Name = *req.Name
	}
	if req.Description != nil {
		list.Description = *req.Description
	}

	if err := s.listRepo.Update(ctx, list); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(list)
}

// DeleteList handles DELETE /api/lists/:id
func (s *Server) DeleteList(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	id := c.Params("id")

	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("List", id))
	}
	if list.OwnerID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own lists"))
	}

	if err := s.listRepo.Delete(ctx, id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddListMember handles POST /api/lists/:id/members/:userId
func (s *Server) AddListMember(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	listID := c.Params("id")
	memberID := c.Params("userId")

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("List", listID))
	}
	if list.OwnerID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only modify your own lists"))
	}

	if _, err := s.userRepo.GetByID(ctx, memberID, ""); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", memberID))
	}

	if err := s.listRepo.AddMember(ctx, listID, memberID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveListMember handles DELETE /api/lists/:id/members/:userId
func (s *Server) RemoveListMember(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	listID := c.Params("id")
	memberID := c.Params("userId")

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("List", listID))
	}
	if list.OwnerID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only modify your own lists"))
	}

	if err := s.listRepo.RemoveMember(ctx, listID, memberID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetListFeed handles GET /api/lists/:id/feed by reusing the custom feed's
// user filter over the list's members.
func (s *Server) GetListFeed(c *fiber.Ctx) error {
	ctx := c.Context()
	viewerID := c.Locals("userID").(string)
	listID := c.Params("id")

	if _, err := s.listRepo.GetByID(ctx, listID); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("List", listID))
	}

	memberIDs, err := s.listRepo.MemberIDs(ctx, listID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if len(memberIDs) == 0 {
		return c.JSON(models.FeedResponse{Data: models.FeedPage{Posts: []*models.Post{}}})
	}

	page, err := s.postRepo.Feed(ctx, models.FeedQuery{
		Type:     models.FeedCustom,
		ViewerID: viewerID,
		Limit:    s.feedLimit(c),
		Cursor:   c.Query("cursor"),
		Filters:  &models.CustomFilters{Users: memberIDs},
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(models.FeedResponse{Data: *page})
}
