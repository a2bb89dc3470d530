package server

import (
	"murmur/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyInsights handles GET /api/insights/me?days=N
func (s *Server) GetMyInsights(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	days := c.QueryInt("days", 7)
	if days < 1 || days > 90 {
		days = 7
	}

	insights, err := s.analyticsRepo.UserInsights(c.Context(), userID, days)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(insights)
}
