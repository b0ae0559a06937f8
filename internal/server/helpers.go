package server

import (
	"fmt"
	"io"
	"net/url"

	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CurrentUser is the signed-in visitor as templates see it.
type CurrentUser struct {
	ID       uint
	Username string
}

func currentUser(c *fiber.Ctx) *CurrentUser {
	uid, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil
	}
	username, _ := c.Locals(middleware.LocalUsername).(string)
	return &CurrentUser{ID: uid, Username: username}
}

// mustUser returns the signed-in visitor; routes using it sit behind LoginRequired.
func mustUser(c *fiber.Ctx) (*CurrentUser, error) {
	if u := currentUser(c); u != nil {
		return u, nil
	}
	return nil, models.NewUnauthorizedError("Authentication required")
}

// render fills in the values every page needs and renders name.
func (s *Server) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	if _, ok := bind["current_user"]; !ok {
		if u := currentUser(c); u != nil {
			bind["current_user"] = u
		}
	}
	return c.Render(name, bind)
}

// parsePostID reads :post_id. Anything but a positive integer is a missing page.
func parsePostID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("post_id")
	if err != nil || id <= 0 {
		return 0, models.NewNotFoundError("Post", c.Params("post_id"))
	}
	return uint(id), nil
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

// redirectBack sends the visitor to the page they came from when it is on this
// site, otherwise to fallback.
func redirectBack(c *fiber.Ctx, fallback string) error {
	target := fallback
	if ref := c.Get(fiber.HeaderReferer); ref != "" {
		if u, err := url.Parse(ref); err == nil && (u.Host == "" || u.Host == c.Hostname()) {
			target = middleware.SafeNext(u.RequestURI(), fallback)
		}
	}
	return c.Redirect(target, fiber.StatusFound)
}

// postInput reads the post form, including an optional image upload.
func postInput(c *fiber.Ctx, maxBytes int64) (forms.PostInput, error) {
	in := forms.PostInput{
		Text:  c.FormValue("text"),
		Group: c.FormValue("group"),
	}

	fh, err := c.FormFile("image")
	if err != nil || fh == nil || (fh.Filename == "" && fh.Size == 0) {
		return in, nil
	}

	f, err := fh.Open()
	if err != nil {
		return in, models.NewInternalError(err)
	}
	defer f.Close()

	limit := forms.Limits{MaxImageBytes: maxBytes}.ImageBytes()
	// one byte over the limit is enough for the size check to fail
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return in, models.NewInternalError(err)
	}
	in.Image = &forms.Upload{Filename: fh.Filename, Data: data}
	return in, nil
}
