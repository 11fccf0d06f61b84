package server

import (
	"github.com/gofiber/fiber/v2"

	"neighborly/internal/models"
	"neighborly/internal/service"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req struct {
		Text     string   `json:"text"`
		Category string   `json:"category"`
		Block    string   `json:"block"`
		Images   []string `json:"images"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:   viewer.ID,
		Text:     req.Text,
		Category: models.Category(req.Category),
		Block:    req.Block,
		Images:   req.Images,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), viewer, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), viewer, id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// TogglePostPin handles PUT /api/posts/:id/pin
func (s *Server) TogglePostPin(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.TogglePin(c.Context(), viewer, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// ReportPost handles POST /api/posts/:id/report
func (s *Server) ReportPost(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	count, err := s.postService.ReportPost(c.Context(), viewer, id, req.Reason)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Report recorded", "report_count": count})
}
