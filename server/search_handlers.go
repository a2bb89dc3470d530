package server

import (
	"fmt"
	"time"

	"murmur/cache"
	"murmur/models"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) searchCacheTTL() time.Duration {
	ttl := s.config.SearchCacheTTL
	if ttl <= 0 {
		ttl = 60
	}
	return time.Duration(ttl) * time.Second
}

// SearchPosts handles GET /api/search/posts?q=...
// Results are served through a short-TTL cache keyed by the full query shape.
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	q := c.Query("q")
	if q == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)
	viewerID, _ := s.optionalUserID(c)

	// Viewer flags are per-user, so the key includes the viewer.
	key := fmt.Sprintf("search:posts:%s:%d:%d:%s", q, limit, offset, viewerID)

	var posts []*models.Post
	err := cache.CacheAside(ctx, key, &posts, s.searchCacheTTL(), func() error {
		var ferr error
		posts, ferr = s.postRepo.Search(ctx, q, limit, offset, viewerID)
		return ferr
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(posts)
}

// SearchUsers handles GET /api/search/users?q=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	ctx := c.Context()
	q := c.Query("q")
	if q == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)

	key := fmt.Sprintf("search:users:%s:%d:%d", q, limit, offset)

	var users []*models.User
	err := cache.CacheAside(ctx, key, &users, s.searchCacheTTL(), func() error {
		var ferr error
		users, ferr = s.userRepo.Search(ctx, q, limit, offset)
		return ferr
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(users)
}
