package server

import (
	"errors"
	"log/slog"

	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupPage renders the registration form.
func (s *Server) SignupPage(c *fiber.Ctx) error {
	return s.render(c, "users/signup", fiber.Map{
		"title":  "Sign up",
		"form":   forms.SignupInput{},
		"errors": forms.Errors{},
	})
}

// Signup registers a user and signs them in.
func (s *Server) Signup(c *fiber.Ctx) error {
	in := forms.SignupInput{
		Username:  c.FormValue("username"),
		Email:     c.FormValue("email"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Password1: c.FormValue("password1"),
		Password2: c.FormValue("password2"),
	}

	user, err := s.userService.Signup(c.UserContext(), in)
	if errs, ok := service.FormErrors(err); ok {
		in.Password1, in.Password2 = "", ""
		return s.render(c, "users/signup", fiber.Map{"title": "Sign up", "form": in, "errors": errs})
	}
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "user signed up", slog.Uint64("user_id", uint64(user.ID)))
	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

// LoginPage renders the login form.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, "users/login", fiber.Map{
		"title":  "Log in",
		"next":   c.Query("next"),
		"errors": forms.Errors{},
	})
}

// Login checks credentials, sets the session cookie and follows next.
func (s *Server) Login(c *fiber.Ctx) error {
	in := forms.LoginInput{Username: c.FormValue("username"), Password: c.FormValue("password")}
	next := c.FormValue("next", c.Query("next"))

	rerender := func(errs forms.Errors) error {
		return s.render(c, "users/login", fiber.Map{
			"title":    "Log in",
			"next":     next,
			"username": in.Username,
			"errors":   errs,
		})
	}

	if errs := forms.ValidateLogin(in); errs.Any() {
		return rerender(errs)
	}
	user, err := s.userService.Authenticate(c.UserContext(), in.Username, in.Password)
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.CodeUnauthorized {
		errs := forms.Errors{}
		errs.Add(forms.NonFieldErrors, appErr.Message)
		return rerender(errs)
	}
	if err != nil {
		return err
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect(middleware.SafeNext(next, "/"), fiber.StatusFound)
}

// Logout revokes the session and clears the cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	if sess, ok := middleware.CurrentSession(c); ok {
		if err := s.sessions.Revoke(c.UserContext(), sess); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "session revoke failed", slog.String("error", err.Error()))
		}
	}
	s.sessions.ClearCookie(c)
	return c.Redirect("/", fiber.StatusFound)
}

func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, sess, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.sessions.SetCookie(c, token, sess)
	return nil
}
