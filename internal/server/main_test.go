package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testTimeoutMs = 5000

// newTestApp wires a Server over a fresh in-memory store onto a Fiber app
// with session resolution, skipping the metrics middleware.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))

	cfg := &config.Config{
		Port:          "0",
		SessionSecret: "test-secret",
		Env:           "test",
		DBDriver:      "sqlite",
		DBPath:        ":memory:",
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    userRepo,
		postRepo:    postRepo,
		authService: service.NewAuthService(userRepo),
		postService: service.NewPostService(postRepo),
		sessions:    session.NewManager(cfg.SessionSecret),
	}

	app := NewFiberApp()
	app.Use(middleware.CurrentUser(s.sessions, s.userRepo))
	s.SetupRoutes(app)

	return app, db
}

// postForm performs a form POST, optionally carrying a session cookie.
func postForm(t *testing.T, app *fiber.App, target string, values url.Values, sessionToken string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionToken})
	}
	resp, err := app.Test(req, testTimeoutMs)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, target string, sessionToken string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionToken})
	}
	resp, err := app.Test(req, testTimeoutMs)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// sessionCookie extracts the session cookie value from a response, or "".
func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	return ""
}

// registerAndLogin registers a user through the real handlers and returns a
// live session token.
func registerAndLogin(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}

	resp := postForm(t, app, "/auth/register", form, "")
	require.Equal(t, http.StatusFound, resp.StatusCode, "register %s", username)
	require.Equal(t, "/auth/login", resp.Header.Get("Location"))
	_ = resp.Body.Close()

	resp = postForm(t, app, "/auth/login", form, "")
	require.Equal(t, http.StatusFound, resp.StatusCode, "login %s", username)
	require.Equal(t, "/", resp.Header.Get("Location"))
	token := sessionCookie(resp)
	require.NotEmpty(t, token, "login must set the session cookie")
	_ = resp.Body.Close()

	return token
}
