// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"github.com/gofiber/fiber/v2"
)

// BecomeAuthor handles POST /api/authors/me
func (s *Server) BecomeAuthor(c *fiber.Ctx) error {
	author, err := s.authorService.BecomeAuthor(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(author)
}

// GetMyAuthor handles GET /api/authors/me
func (s *Server) GetMyAuthor(c *fiber.Ctx) error {
	author, err := s.authorService.GetAuthorForUser(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if author == nil {
		return c.JSON(fiber.Map{"author": nil})
	}
	return c.JSON(author)
}

// GetAuthor handles GET /api/authors/:id
func (s *Server) GetAuthor(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	author, err := s.authorService.GetAuthor(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(author)
}

// RecomputeAuthorRating handles POST /api/authors/:id/recompute
func (s *Server) RecomputeAuthorRating(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	rating, err := s.ratingService.RecomputeAuthor(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"author_id": id,
		"rating":    rating,
	})
}
