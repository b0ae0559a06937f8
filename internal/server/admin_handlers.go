package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ClearCache drops every cached page. Admins only.
func (s *Server) ClearCache(c *fiber.Ctx) error {
	if err := s.ClearPageCache(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "cleared",
		"time":   time.Now(),
	})
}
