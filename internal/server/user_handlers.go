package server

import (
	"github.com/gofiber/fiber/v2"

	"neighborly/internal/models"
)

// GetProfile handles GET /api/users/me
func (s *Server) GetProfile(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(viewer)
}

// UpdateProfile handles PUT /api/users/me
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateName(c.Context(), viewer.ID, req.Name)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateSettings handles PUT /api/users/me/settings
func (s *Server) UpdateSettings(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		MutedCategories []string `json:"muted_categories"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	muted := make([]models.Category, 0, len(req.MutedCategories))
	for _, m := range req.MutedCategories {
		muted = append(muted, models.Category(m))
	}

	user, err := s.userService.UpdateMutedCategories(c.Context(), viewer.ID, muted)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdatePushToken handles PUT /api/users/me/push-token
func (s *Server) UpdatePushToken(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		PushToken string `json:"push_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	if _, err := s.userService.UpdatePushToken(c.Context(), viewer.ID, req.PushToken); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Push token updated"})
}
