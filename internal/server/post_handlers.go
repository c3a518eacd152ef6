// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"errors"

	"gazette/internal/models"
	"gazette/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	CategoryIDs []uint `json:"category_ids"`
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:      userID,
		Kind:        req.Kind,
		Title:       req.Title,
		Body:        req.Body,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotificationFailed && post != nil {
			// The post is committed; tell the client delivery lagged behind.
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"post":    post,
				"warning": appErr.Message,
			})
		}
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts with optional kind and category filters
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Limit:      page.Limit,
		Offset:     page.Offset,
		Kind:       c.Query("kind"),
		CategoryID: uint(c.QueryInt("category", 0)),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 10)

	posts, err := s.postService.SearchPosts(c.Context(), c.Query("q"), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:      currentUserID(c),
		PostID:      id,
		Kind:        req.Kind,
		Title:       req.Title,
		Body:        req.Body,
		CategoryIDs: req.CategoryIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.LikePost(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DislikePost handles POST /api/posts/:id/dislike
func (s *Server) DislikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.DislikePost(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}
