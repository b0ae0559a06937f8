package server

import (
	"github.com/gofiber/fiber/v2"
)

// ProfileFollow follows the author and goes back.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	author, _, err := s.followService.Follow(c.UserContext(), user.ID, c.Params("username"))
	if err != nil {
		return err
	}
	return redirectBack(c, profileURL(author.Username))
}

// ProfileUnfollow unfollows the author and goes back.
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	author, _, err := s.followService.Unfollow(c.UserContext(), user.ID, c.Params("username"))
	if err != nil {
		return err
	}
	return redirectBack(c, profileURL(author.Username))
}
