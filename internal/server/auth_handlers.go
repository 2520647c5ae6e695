package server

import (
	"time"

	"inkwell/internal/observability"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

// RegisterPage handles GET /auth/register.
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return c.Render("auth/register", s.viewData(c, nil))
}

// Register handles POST /auth/register. Validation failures re-render the
// form with an inline message and HTTP 200; success redirects to the login
// page. A uniqueness race inside the store surfaces with the same message as
// the pre-check path.
func (s *Server) Register(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	if err := s.authService.Register(c.UserContext(), username, password); err != nil {
		if msg, ok := isValidationError(err); ok {
			observability.RegistrationsTotal.WithLabelValues("rejected").Inc()
			return c.Render("auth/register", s.viewData(c, fiber.Map{"Error": msg}))
		}
		observability.RegistrationsTotal.WithLabelValues("error").Inc()
		return s.renderAppError(c, err)
	}

	observability.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.Redirect("/auth/login")
}

// LoginPage handles GET /auth/login.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return c.Render("auth/login", s.viewData(c, nil))
}

// Login handles POST /auth/login. On success a fresh session cookie is set,
// fully replacing any prior session. On failure no cookie is touched and the
// form re-renders with the message, HTTP 200.
func (s *Server) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := s.authService.Authenticate(c.UserContext(), username, password)
	if err != nil {
		if msg, ok := isValidationError(err); ok {
			observability.LoginsTotal.WithLabelValues("rejected").Inc()
			return c.Render("auth/login", s.viewData(c, fiber.Map{"Error": msg}))
		}
		observability.LoginsTotal.WithLabelValues("error").Inc()
		return s.renderAppError(c, err)
	}

	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return s.renderAppError(c, err)
	}
	s.setSessionCookie(c, token)

	observability.LoginsTotal.WithLabelValues("success").Inc()
	return c.Redirect("/")
}

// Logout handles GET /auth/logout: the session cookie is cleared entirely.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearSessionCookie(c)
	return c.Redirect("/")
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(session.DefaultTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
