package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	_, app := setupTestServer(t)

	tests := []struct {
		name           string
		requestBody    map[string]string
		expectedStatus int
	}{
		{
			name: "Valid signup",
			requestBody: map[string]string{
				"username": "newuser",
				"email":    "new@example.com",
				"password": "password123",
			},
			expectedStatus: fiber.StatusCreated,
		},
		{
			name: "Duplicate email",
			requestBody: map[string]string{
				"username": "otheruser",
				"email":    "new@example.com",
				"password": "password123",
			},
			expectedStatus: fiber.StatusConflict,
		},
		{
			name: "Missing password",
			requestBody: map[string]string{
				"username": "nopass",
				"email":    "nopass@example.com",
			},
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "Empty body",
			requestBody:    map[string]string{},
			expectedStatus: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "POST", "/api/auth/signup", "", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == fiber.StatusCreated {
				var auth authResponse
				decodeBody(t, resp, &auth)
				assert.NotEmpty(t, auth.Token)
				assert.Equal(t, tt.requestBody["username"], auth.User.Username)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	_, app := setupTestServer(t)
	signupTestUser(t, app, "loginuser")

	tests := []struct {
		name           string
		requestBody    map[string]string
		expectedStatus int
	}{
		{
			name: "Valid credentials",
			requestBody: map[string]string{
				"email":    "loginuser@example.com",
				"password": "password123",
			},
			expectedStatus: fiber.StatusOK,
		},
		{
			name: "Wrong password",
			requestBody: map[string]string{
				"email":    "loginuser@example.com",
				"password": "wrong",
			},
			expectedStatus: fiber.StatusUnauthorized,
		},
		{
			name: "Unknown email",
			requestBody: map[string]string{
				"email":    "ghost@example.com",
				"password": "password123",
			},
			expectedStatus: fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "POST", "/api/auth/login", "", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == fiber.StatusOK {
				var auth authResponse
				decodeBody(t, resp, &auth)
				assert.NotEmpty(t, auth.Token)
			}
		})
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	_, app := setupTestServer(t)

	resp := doRequest(t, app, "GET", "/api/users/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/users/me", "not-a-jwt", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTokenRoundTrip(t *testing.T) {
	_, app := setupTestServer(t)
	token, user := signupTestUser(t, app, "tokenuser")

	resp := doRequest(t, app, "GET", "/api/users/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var me map[string]any
	decodeBody(t, resp, &me)
	assert.Equal(t, user.ID, me["id"])
	assert.Equal(t, "tokenuser", me["username"])
}
