package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"murmur/config"
	"murmur/database"
	"murmur/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestServer wires a server against an in-memory SQLite database with the
// full route table and no Redis.
func setupTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	cfg := &config.Config{
		JWTSecret:      "test-secret-key",
		FeedMaxLimit:   100,
		SearchCacheTTL: 60,
	}
	s := NewServerWithDeps(cfg, db, nil)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

// doRequest performs one JSON request against the test app.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// signupTestUser registers a user through the API and returns its token and record.
func signupTestUser(t *testing.T, app *fiber.App, username string) (string, models.User) {
	t.Helper()

	resp := doRequest(t, app, "POST", "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var auth authResponse
	decodeBody(t, resp, &auth)
	require.NotEmpty(t, auth.Token)
	return auth.Token, auth.User
}

// createPostViaAPI creates a post for the token's user and returns it.
func createPostViaAPI(t *testing.T, app *fiber.App, token, text string) models.Post {
	t.Helper()

	resp := doRequest(t, app, "POST", "/api/posts/", token, map[string]any{"text": text})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(t, resp, &post)
	require.NotEmpty(t, post.ID)
	return post
}
