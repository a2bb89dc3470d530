package server

import (
	"errors"

	"murmur/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)

	var req struct {
		Text     string   `json:"text"`
		ParentID *string  `json:"parent_id,omitempty"`
		QuoteID  *string  `json:"quote_id,omitempty"`
		Media    []string `json:"media,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Text == "" && len(req.Media) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Text or media is required"))
	}

	if req.ParentID != nil {
		if _, err := s.postRepo.GetByID(ctx, *req.ParentID, ""); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Parent post does not exist"))
		}
	}

	post := &models.Post{
		Text:     req.Text,
		UserID:   userID,
		ParentID: req.ParentID,
		QuoteID:  req.QuoteID,
	}
	for _, url := range req.Media {
		post.Media = append(post.Media, models.Media{URL: url})
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Load user data for response
	post, err := s.postRepo.GetByID(ctx, post.ID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id := c.Params("id")
	viewerID, _ := s.optionalUserID(c)

	post, err := s.postRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", id))
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(string)
	postID := c.Params("id")

	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", postID))
	}

	// Check ownership
	if post.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only delete your own posts"))
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// toggleHandler responds with the confirmed boolean state under `field`.
// The mutation endpoints deliberately return only the new state, never a
// recomputed post; clients adjust counters locally.
func (s *Server) toggleHandler(c *fiber.Ctx, field string, toggle func(userID, postID string) (bool, error)) error {
	userID := c.Locals("userID").(string)
	postID := c.Params("id")

	state, err := toggle(userID, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", postID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{field: state})
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.toggleHandler(c, "liked", func(userID, postID string) (bool, error) {
		return s.postRepo.ToggleLike(c.Context(), userID, postID, true)
	})
}

// UnlikePost handles POST /api/posts/:id/unlike
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.toggleHandler(c, "liked", func(userID, postID string) (bool, error) {
		return s.postRepo.ToggleLike(c.Context(), userID, postID, false)
	})
}

// RepostPost handles POST /api/posts/:id/repost
func (s *Server) RepostPost(c *fiber.Ctx) error {
	return s.toggleHandler(c, "reposted", func(userID, postID string) (bool, error) {
		return s.postRepo.ToggleRepost(c.Context(), userID, postID, true)
	})
}

// UnrepostPost handles POST /api/posts/:id/unrepost
func (s *Server) UnrepostPost(c *fiber.Ctx) error {
	return s.toggleHandler(c, "reposted", func(userID, postID string) (bool, error) {
		return s.postRepo.ToggleRepost(c.Context(), userID, postID, false)
	})
}

// BookmarkPost handles POST /api/posts/:id/bookmark
func (s *Server) BookmarkPost(c *fiber.Ctx) error {
	return s.toggleHandler(c, "bookmarked", func(userID, postID string) (bool, error) {
		return s.postRepo.ToggleBookmark(c.Context(), userID, postID, true)
	})
}

// UnbookmarkPost handles POST /api/posts/:id/unbookmark
func (s *Server) UnbookmarkPost(c *fiber.Ctx) error {
	return s.toggleHandler(c, "bookmarked", func(userID, postID string) (bool, error) {
		return s.postRepo.ToggleBookmark(c.Context(), userID, postID, false)
	})
}
