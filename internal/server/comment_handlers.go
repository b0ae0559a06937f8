package server

import (
	"yatube/internal/forms"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment stores a comment and returns to the post. Invalid comments are
// dropped without a message.
func (s *Server) AddComment(c *fiber.Ctx) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	_, err = s.commentService.Add(c.UserContext(), user.ID, id, forms.CommentInput{Text: c.FormValue("text")})
	if _, invalid := service.FormErrors(err); err != nil && !invalid {
		return err
	}
	return c.Redirect(postURL(id), fiber.StatusFound)
}
