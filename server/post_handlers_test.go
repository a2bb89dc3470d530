package server

import (
	"testing"

	"murmur/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	_, app := setupTestServer(t)
	token, user := signupTestUser(t, app, "poster")

	tests := []struct {
		name           string
		requestBody    map[string]any
		token          string
		expectedStatus int
	}{
		{
			name:           "Valid post",
			requestBody:    map[string]any{"text": "hello world"},
			token:          token,
			expectedStatus: fiber.StatusCreated,
		},
		{
			name:           "Media without text",
			requestBody:    map[string]any{"media": []string{"https://cdn.example.com/1.jpg"}},
			token:          token,
			expectedStatus: fiber.StatusCreated,
		},
		{
			name:           "Empty post",
			requestBody:    map[string]any{},
			token:          token,
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "Reply to missing parent",
			requestBody:    map[string]any{"text": "orphan", "parent_id": "nonexistent"},
			token:          token,
			expectedStatus: fiber.StatusBadRequest,
		},
		{
			name:           "No token",
			requestBody:    map[string]any{"text": "anonymous"},
			token:          "",
			expectedStatus: fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "POST", "/api/posts/", tt.token, tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == fiber.StatusCreated {
				var post models.Post
				decodeBody(t, resp, &post)
				assert.NotEmpty(t, post.ID)
				assert.Equal(t, user.ID, post.UserID)
			}
		})
	}
}

func TestCreateReplyBumpsParent(t *testing.T) {
	_, app := setupTestServer(t)
	token, _ := signupTestUser(t, app, "replier")
	parent := createPostViaAPI(t, app, token, "parent post")

	resp := doRequest(t, app, "POST", "/api/posts/", token, map[string]any{
		"text":      "a reply",
		"parent_id": parent.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/posts/"+parent.ID, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got models.Post
	decodeBody(t, resp, &got)
	assert.Equal(t, 1, got.ReplyCount)
}

func TestToggleEndpointsReturnConfirmation(t *testing.T) {
	_, app := setupTestServer(t)
	token, _ := signupTestUser(t, app, "toggler")
	post := createPostViaAPI(t, app, token, "toggle target")

	tests := []struct {
		name   string
		action string
		field  string
		want   bool
	}{
		{"like", "like", "liked", true},
		{"like again", "like", "liked", true},
		{"unlike", "unlike", "liked", false},
		{"repost", "repost", "reposted", true},
		{"bookmark", "bookmark", "bookmarked", true},
		{"unbookmark", "unbookmark", "bookmarked", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, "POST", "/api/posts/"+post.ID+"/"+tt.action, token, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			// The endpoint returns only the confirmed boolean, never a post.
			var confirm map[string]any
			decodeBody(t, resp, &confirm)
			assert.Len(t, confirm, 1)
			assert.Equal(t, tt.want, confirm[tt.field])
		})
	}

	// Repeated likes never double-counted.
	resp := doRequest(t, app, "GET", "/api/posts/"+post.ID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got models.Post
	decodeBody(t, resp, &got)
	assert.Equal(t, 0, got.LikeCount)
	assert.Equal(t, 1, got.RepostCount)
}

func TestToggleMissingPostReturns404(t *testing.T) {
	_, app := setupTestServer(t)
	token, _ := signupTestUser(t, app, "toggler")

	resp := doRequest(t, app, "POST", "/api/posts/nonexistent/like", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeletePostOwnership(t *testing.T) {
	_, app := setupTestServer(t)
	ownerToken, _ := signupTestUser(t, app, "owner")
	otherToken, _ := signupTestUser(t, app, "other")
	post := createPostViaAPI(t, app, ownerToken, "mine")

	resp := doRequest(t, app, "DELETE", "/api/posts/"+post.ID, otherToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, "DELETE", "/api/posts/"+post.ID, ownerToken, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/posts/"+post.ID, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetPostViewerFlags(t *testing.T) {
	_, app := setupTestServer(t)
	token, _ := signupTestUser(t, app, "viewer")
	post := createPostViaAPI(t, app, token, "flagged")

	resp := doRequest(t, app, "POST", "/api/posts/"+post.ID+"/like", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// With a token, viewer-relative flags attach.
	resp = doRequest(t, app, "GET", "/api/posts/"+post.ID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got models.Post
	decodeBody(t, resp, &got)
	assert.True(t, got.IsLiked)
	assert.Equal(t, 1, got.LikeCount)

	// Anonymous requests see counts but no flags.
	resp = doRequest(t, app, "GET", "/api/posts/"+post.ID, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &got)
	assert.False(t, got.IsLiked)
	assert.Equal(t, 1, got.LikeCount)
}
