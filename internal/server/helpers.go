package server

import (
	"errors"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts the :id route parameter as a positive uint. A value that
// is not a positive integer cannot name a post, so the failure renders the
// 404 page and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = s.renderAppError(c, models.NewNotFoundError("Post", c.Params("id")))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// viewData assembles the common template binding: the resolved current user
// plus any page-specific fields.
func (s *Server) viewData(c *fiber.Ctx, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["CurrentUser"]; !ok {
		data["CurrentUser"] = middleware.UserFromCtx(c)
	}
	return data
}

// renderAppError maps the error taxonomy to the HTML status contract:
// NOT_FOUND renders the 404 page, FORBIDDEN the 403 page, UNAUTHORIZED
// redirects to login, and everything else is a 500.
func (s *Server) renderAppError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}

	switch appErr.Code {
	case models.CodeNotFound:
		return c.Status(fiber.StatusNotFound).Render("error", s.viewData(c, fiber.Map{
			"Status":  fiber.StatusNotFound,
			"Message": appErr.Message,
		}))
	case models.CodeForbidden:
		return c.Status(fiber.StatusForbidden).Render("error", s.viewData(c, fiber.Map{
			"Status":  fiber.StatusForbidden,
			"Message": "Forbidden",
		}))
	case models.CodeUnauthorized:
		return c.Redirect("/auth/login")
	default:
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			"error", appErr.Error())
		return c.Status(fiber.StatusInternalServerError).Render("error", s.viewData(c, fiber.Map{
			"Status":  fiber.StatusInternalServerError,
			"Message": "Internal server error",
		}))
	}
}

// isValidationError reports whether err carries a user-visible inline message.
func isValidationError(err error) (string, bool) {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
		return appErr.Message, true
	}
	return "", false
}
