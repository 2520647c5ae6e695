package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /: every post with its author, most recent first.
// World-readable, no authorization.
func (s *Server) Index(c *fiber.Ctx) error {
	posts, err := s.postService.List(c.UserContext())
	if err != nil {
		return s.renderAppError(c, err)
	}
	return c.Render("blog/index", s.viewData(c, fiber.Map{"Posts": posts}))
}

// CreatePostPage handles GET /create.
func (s *Server) CreatePostPage(c *fiber.Ctx) error {
	return c.Render("blog/create", s.viewData(c, nil))
}

// CreatePost handles POST /create. Any authenticated user may create; an
// empty title re-renders the form with an inline message.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	current := middleware.UserFromCtx(c)
	title := c.FormValue("title")
	body := c.FormValue("body")

	if _, err := s.postService.Create(c.UserContext(), current, title, body); err != nil {
		if msg, ok := isValidationError(err); ok {
			return c.Render("blog/create", s.viewData(c, fiber.Map{"Error": msg}))
		}
		return s.renderAppError(c, err)
	}

	observability.PostMutationsTotal.WithLabelValues("create").Inc()
	return c.Redirect("/")
}

// UpdatePostPage handles GET /:id/update. The gate runs before the form
// renders: a missing post is 404, a foreign post 403.
func (s *Server) UpdatePostPage(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.GetForMutation(c.UserContext(), middleware.UserFromCtx(c), id)
	if err != nil {
		return s.renderAppError(c, err)
	}
	return c.Render("blog/update", s.viewData(c, fiber.Map{"Post": post}))
}

// UpdatePost handles POST /:id/update. The gate is evaluated fresh on every
// call; on success title and body are overwritten.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	current := middleware.UserFromCtx(c)
	title := c.FormValue("title")
	body := c.FormValue("body")

	if err := s.postService.Update(c.UserContext(), current, id, title, body); err != nil {
		if msg, ok := isValidationError(err); ok {
			// Gate already passed; re-render the form over the stored post.
			post, getErr := s.postService.GetForMutation(c.UserContext(), current, id)
			if getErr != nil {
				return s.renderAppError(c, getErr)
			}
			return c.Render("blog/update", s.viewData(c, fiber.Map{
				"Post":  post,
				"Error": msg,
			}))
		}
		return s.renderAppError(c, err)
	}

	observability.PostMutationsTotal.WithLabelValues("update").Inc()
	return c.Redirect("/")
}

// DeletePost handles POST /:id/delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), middleware.UserFromCtx(c), id); err != nil {
		return s.renderAppError(c, err)
	}

	observability.PostMutationsTotal.WithLabelValues("delete").Inc()
	return c.Redirect("/")
}
