// Package server contains the HTTP handlers and route setup for the
// application's HTML surface.
package server

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"gorm.io/gorm"
)

//go:embed views
var viewsFS embed.FS

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	authService    *service.AuthService
	postService    *service.PostService
	sessions       *session.Manager
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return NewServerWithDeps(cfg, db)
}

// NewServerWithDeps creates a Server using an already-initialized database.
// Tests and bootstrap layers use this to supply their own store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		promMiddleware: fiberprometheus.New("inkwell"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		authService:    service.NewAuthService(userRepo),
		postService:    service.NewPostService(postRepo),
		sessions:       session.NewManager(cfg.SessionSecret),
	}
	return server, nil
}

// NewFiberApp builds a Fiber app wired to the embedded HTML views.
func NewFiberApp() *fiber.App {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")

	return fiber.New(fiber.Config{
		AppName:     "Inkwell",
		Views:       engine,
		ViewsLayout: "layout",
	})
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate the request ID into the logger
	app.Use(middleware.ContextMiddleware())

	// HTTP metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Session resolution runs on every request; anonymous is a valid outcome.
	app.Use(middleware.CurrentUser(s.sessions, s.userRepo))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := app.Group("/auth")
	auth.Get("/register", s.RegisterPage)
	auth.Post("/register", s.Register)
	auth.Get("/login", s.LoginPage)
	auth.Post("/login", s.Login)
	auth.Get("/logout", s.Logout)

	// Blog routes. Reads are world-readable; mutations sit behind the
	// login guard, and the service gate re-checks ownership regardless.
	app.Get("/", s.Index)

	loginRequired := middleware.LoginRequired()
	app.Get("/create", loginRequired, s.CreatePostPage)
	app.Post("/create", loginRequired, s.CreatePost)
	app.Get("/:id<int>/update", loginRequired, s.UpdatePostPage)
	app.Post("/:id<int>/update", loginRequired, s.UpdatePost)
	app.Post("/:id<int>/delete", loginRequired, s.DeletePost)
}

// HealthCheck reports liveness and store connectivity.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status = "degraded"
			c.Status(fiber.StatusServiceUnavailable)
		}
	}
	return c.JSON(fiber.Map{"status": status})
}
