package middleware

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

// currentUserKey is the Fiber locals key holding the resolved *models.User.
const currentUserKey = "currentUser"

// CurrentUser resolves the session cookie into the current user for the
// duration of one request. Missing cookie, invalid token, and a token naming
// a user that no longer exists all resolve to anonymous; resolution never
// produces an error response on its own.
func CurrentUser(mgr *session.Manager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(session.CookieName)
		if token == "" {
			return c.Next()
		}

		userID, err := mgr.Parse(token)
		if err != nil {
			return c.Next()
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil || user == nil {
			// Dangling id: the token outlived the user it names.
			return c.Next()
		}

		c.Locals(currentUserKey, user)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID))
		return c.Next()
	}
}

// UserFromCtx returns the resolved current user, or nil for anonymous.
func UserFromCtx(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(currentUserKey).(*models.User); ok {
		return user
	}
	return nil
}

// LoginRequired redirects anonymous requests to the login page. It is an
// explicit composable guard applied per route; mutating services still run
// the ownership gate themselves.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserFromCtx(c) == nil {
			return c.Redirect("/auth/login")
		}
		return c.Next()
	}
}
