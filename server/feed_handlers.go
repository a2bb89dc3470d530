package server

import (
	"strings"

	"murmur/models"

	"github.com/gofiber/fiber/v2"
)

// feedLimit clamps the requested page size.
func (s *Server) feedLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", 20)
	max := s.config.FeedMaxLimit
	if max <= 0 {
		max = 100
	}
	if limit < 1 {
		return 20
	}
	if limit > max {
		return max
	}
	return limit
}

// GetFeed handles GET /api/feed/:type for
// explore|home|following|posts|media|quotes|reposts.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	feedType := c.Params("type")
	viewerID, _ := s.optionalUserID(c)

	query := models.FeedQuery{
		Type:     feedType,
		ViewerID: viewerID,
		Limit:    s.feedLimit(c),
		Cursor:   c.Query("cursor"),
	}

	switch feedType {
	case models.FeedExplore:
	case models.FeedHome, models.FeedFollowing:
		if viewerID == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required for this feed"))
		}
	case models.FeedPosts, models.FeedMedia, models.FeedQuotes, models.FeedReposts:
		author := c.Query("user")
		if author == "" {
			author = viewerID
		}
		if author == "" && feedType != models.FeedMedia && feedType != models.FeedQuotes {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("user parameter is required"))
		}
		query.AuthorID = author
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown feed type"))
	}

	page, err := s.postRepo.Feed(c.Context(), query)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(models.FeedResponse{Data: *page})
}

// GetRepliesFeed handles GET /api/feed/replies/:parentId
func (s *Server) GetRepliesFeed(c *fiber.Ctx) error {
	parentID := c.Params("parentId")
	if parentID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Parent post ID is required"))
	}
	viewerID, _ := s.optionalUserID(c)

	page, err := s.postRepo.Feed(c.Context(), models.FeedQuery{
		Type:     models.FeedReplies,
		ParentID: parentID,
		ViewerID: viewerID,
		Limit:    s.feedLimit(c),
		Cursor:   c.Query("cursor"),
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(models.FeedResponse{Data: *page})
}

// GetCustomFeed handles GET /api/feed/custom with flattened filter parameters
// (users, hashtags, keywords, mediaOnly).
func (s *Server) GetCustomFeed(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)

	filters := &models.CustomFilters{
		Users:     splitParam(c.Query("users")),
		Hashtags:  splitParam(c.Query("hashtags")),
		Keywords:  splitParam(c.Query("keywords")),
		MediaOnly: c.QueryBool("mediaOnly", false),
	}

	page, err := s.postRepo.Feed(c.Context(), models.FeedQuery{
		Type:     models.FeedCustom,
		ViewerID: viewerID,
		Limit:    s.feedLimit(c),
		Cursor:   c.Query("cursor"),
		Filters:  filters,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(models.FeedResponse{Data: *page})
}

// splitParam parses a comma-separated query value, dropping empty entries.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
