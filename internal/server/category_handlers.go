// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"gazette/internal/models"
	"gazette/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCategory handles POST /api/categories
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	category, err := s.categoryService.CreateCategory(c.Context(), req.Name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.ListCategories(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(categories)
}

// GetCategory handles GET /api/categories/:id
func (s *Server) GetCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	category, err := s.categoryService.GetCategory(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(category)
}

// GetCategoryPosts handles GET /api/categories/:id/posts
func (s *Server) GetCategoryPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Limit:      page.Limit,
		Offset:     page.Offset,
		CategoryID: id,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// DeleteCategory handles DELETE /api/categories/:id
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.categoryService.DeleteCategory(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SubscribeCategory handles POST /api/categories/:id/subscribe
func (s *Server) SubscribeCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.categoryService.Subscribe(c.Context(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"subscribed": true})
}

// UnsubscribeCategory handles POST /api/categories/:id/unsubscribe
func (s *Server) UnsubscribeCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.categoryService.Unsubscribe(c.Context(), id, currentUserID(c)); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"subscribed": false})
}
