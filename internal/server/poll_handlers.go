package server

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"neighborly/internal/models"
	"neighborly/internal/service"
)

// CreatePoll handles POST /api/polls
func (s *Server) CreatePoll(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		Question  string     `json:"question"`
		Options   []string   `json:"options"`
		Category  string     `json:"category"`
		Block     string     `json:"block"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	poll, err := s.pollService.CreatePoll(c.Context(), service.CreatePollInput{
		UserID:    viewer.ID,
		Question:  req.Question,
		Options:   req.Options,
		Category:  models.Category(req.Category),
		Block:     req.Block,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(poll)
}

// GetPoll handles GET /api/polls/:id
func (s *Server) GetPoll(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	poll, err := s.pollService.GetPoll(c.Context(), viewer, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(poll)
}

// DeletePoll handles DELETE /api/polls/:id
func (s *Server) DeletePoll(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.pollService.DeletePoll(c.Context(), viewer, id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Poll deleted"})
}

// TogglePollPin handles PUT /api/polls/:id/pin
func (s *Server) TogglePollPin(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	poll, err := s.pollService.TogglePin(c.Context(), viewer, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(poll)
}

// CastVote handles POST /api/polls/:id/vote
func (s *Server) CastVote(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		OptionIndex *int `json:"option_index"`
	}
	if err := c.BodyParser(&req); err != nil || req.OptionIndex == nil {
		return models.RespondWithError(c, models.NewValidationError("option_index is required"))
	}

	poll, err := s.pollService.CastVote(c.Context(), viewer, id, *req.OptionIndex)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(poll)
}
