package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMyProfile(t *testing.T) {
	_, app := setupTestServer(t)
	token, _ := signupTestUser(t, app, "profiled")

	resp := doRequest(t, app, "PUT", "/api/users/me", token, map[string]string{
		"display_name": "Profiled Person",
		"bio":          "writes tests",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated map[string]any
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Profiled Person", updated["display_name"])
	assert.Equal(t, "writes tests", updated["bio"])

	// Omitted fields are left untouched.
	resp = doRequest(t, app, "PUT", "/api/users/me", token, map[string]string{
		"bio": "still writes tests",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Profiled Person", updated["display_name"])
	assert.Equal(t, "still writes tests", updated["bio"])
}

func TestFollowFlow(t *testing.T) {
	_, app := setupTestServer(t)
	followerToken, follower := signupTestUser(t, app, "follower")
	_, followee := signupTestUser(t, app, "followee")

	// Self-follow is rejected.
	resp := doRequest(t, app, "POST", "/api/users/"+follower.ID+"/follow", followerToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Unknown target.
	resp = doRequest(t, app, "POST", "/api/users/nonexistent/follow", followerToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, "POST", "/api/users/"+followee.ID+"/follow", followerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var confirm map[string]bool
	decodeBody(t, resp, &confirm)
	assert.True(t, confirm["following"])

	resp = doRequest(t, app, "GET", "/api/users/"+followee.ID, followerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var profile map[string]any
	decodeBody(t, resp, &profile)
	assert.Equal(t, float64(1), profile["follower_count"])
	assert.Equal(t, true, profile["is_following"])

	resp = doRequest(t, app, "GET", "/api/users/"+followee.ID+"/followers", followerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var followers []map[string]any
	decodeBody(t, resp, &followers)
	require.Len(t, followers, 1)
	assert.Equal(t, follower.ID, followers[0]["id"])

	resp = doRequest(t, app, "DELETE", "/api/users/"+followee.ID+"/follow", followerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/users/"+followee.ID, followerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &profile)
	assert.Equal(t, float64(0), profile["follower_count"])
}
