package server

import (
	"encoding/json"

	"murmur/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// settingKeys is the allow-list of settings blobs the API stores.
var settingKeys = map[string]bool{
	models.SettingKeyAppearance: true,
}

// GetSettings handles GET /api/settings/:key
func (s *Server) GetSettings(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	key := c.Params("key")

	if !settingKeys[key] {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown settings key"))
	}

	setting, err := s.settingsRepo.Get(c.Context(), userID, key)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if setting == nil {
		// No blob yet; clients treat an empty object as defaults.
		return c.JSON(fiber.Map{"key": key, "value": fiber.Map{}})
	}

	return c.JSON(setting)
}

// PutSettings handles PUT /api/settings/:key. The body is stored verbatim as
// an opaque JSON blob, replacing any previous value.
func (s *Server) PutSettings(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	key := c.Params("key")

	if !settingKeys[key] {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown settings key"))
	}

	body := c.Body()
	if !json.Valid(body) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Body must be valid JSON"))
	}

	setting, err := s.settingsRepo.Put(c.Context(), userID, key, datatypes.JSON(body))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(setting)
}
