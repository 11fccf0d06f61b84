package server

import (
	"github.com/gofiber/fiber/v2"

	"neighborly/internal/models"
	"neighborly/internal/service"
)

// GetFeed handles GET /api/feed?category=...&block=...&kind=...
func (s *Server) GetFeed(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	filters := service.FeedFilters{
		Category: models.Category(c.Query("category")),
		Block:    c.Query("block"),
		Kind:     c.Query("kind"),
	}

	items, err := s.feedService.Compose(c.Context(), viewer, filters)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if items == nil {
		items = []models.ContentItem{}
	}

	return c.JSON(fiber.Map{"items": items})
}

// GetContent handles GET /api/feed/content/:id?type=post|poll
func (s *Server) GetContent(c *fiber.Ctx) error {
	viewer, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	switch c.Query("type", "post") {
	case "poll":
		poll, err := s.pollService.GetPoll(c.Context(), viewer, id)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(models.NewPollItem(poll))
	case "post":
		post, err := s.postService.GetPost(c.Context(), viewer, id)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		return c.JSON(models.NewPostItem(post))
	default:
		return models.RespondWithError(c, models.NewValidationError("Invalid content type"))
	}
}
