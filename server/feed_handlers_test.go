package server

import (
	"fmt"
	"testing"

	"murmur/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExploreFeedEnvelope(t *testing.T) {
	_, app := setupTestServer(t)
	token, _ := signupTestUser(t, app, "author")
	for i := 1; i <= 3; i++ {
		createPostViaAPI(t, app, token, fmt.Sprintf("post %d", i))
	}

	resp := doRequest(t, app, "GET", "/api/feed/explore", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope models.FeedResponse
	decodeBody(t, resp, &envelope)
	assert.Len(t, envelope.Data.Posts, 3)
	assert.False(t, envelope.Data.HasMore)
	assert.Nil(t, envelope.Data.NextCursor)
}

func TestFeedCursorPagination(t *testing.T) {
	_, app := setupTestServer(t)
	token, _ := signupTestUser(t, app, "author")
	for i := 1; i <= 5; i++ {
		createPostViaAPI(t, app, token, fmt.Sprintf("post %d", i))
	}

	resp := doRequest(t, app, "GET", "/api/feed/explore?limit=2", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var page1 models.FeedResponse
	decodeBody(t, resp, &page1)
	require.Len(t, page1.Data.Posts, 2)
	require.True(t, page1.Data.HasMore)
	require.NotNil(t, page1.Data.NextCursor)

	resp = doRequest(t, app, "GET", "/api/feed/explore?limit=2&cursor="+*page1.Data.NextCursor, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var page2 models.FeedResponse
	decodeBody(t, resp, &page2)
	require.Len(t, page2.Data.Posts, 2)

	seen := map[string]bool{}
	for _, p := range append(page1.Data.Posts, page2.Data.Posts...) {
		assert.False(t, seen[p.ID], "pages must not overlap")
		seen[p.ID] = true
	}
}

func TestHomeFeedRequiresAuth(t *testing.T) {
	_, app := setupTestServer(t)

	resp := doRequest(t, app, "GET", "/api/feed/home", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/feed/following", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHomeFeedScope(t *testing.T) {
	_, app := setupTestServer(t)
	viewerToken, _ := signupTestUser(t, app, "viewer")
	followedToken, followed := signupTestUser(t, app, "followed")
	strangerToken, _ := signupTestUser(t, app, "stranger")

	createPostViaAPI(t, app, viewerToken, "my post")
	createPostViaAPI(t, app, followedToken, "followed post")
	createPostViaAPI(t, app, strangerToken, "stranger post")

	resp := doRequest(t, app, "POST", "/api/users/"+followed.ID+"/follow", viewerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/feed/home", viewerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var home models.FeedResponse
	decodeBody(t, resp, &home)

	texts := make([]string, 0, len(home.Data.Posts))
	for _, p := range home.Data.Posts {
		texts = append(texts, p.Text)
	}
	assert.ElementsMatch(t, []string{"my post", "followed post"}, texts)

	resp = doRequest(t, app, "GET", "/api/feed/following", viewerToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var following models.FeedResponse
	decodeBody(t, resp, &following)
	require.Len(t, following.Data.Posts, 1)
	assert.Equal(t, "followed post", following.Data.Posts[0].Text)
}

func TestRepliesFeed(t *testing.T) {
	_, app := setupTestServer(t)
	token, _ := signupTestUser(t, app, "author")
	parent := createPostViaAPI(t, app, token, "root")

	resp := doRequest(t, app, "POST", "/api/posts/", token, map[string]any{
		"text": "first reply", "parent_id": parent.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, "GET", "/api/feed/replies/"+parent.ID, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var envelope models.FeedResponse
	decodeBody(t, resp, &envelope)
	require.Len(t, envelope.Data.Posts, 1)
	assert.Equal(t, "first reply", envelope.Data.Posts[0].Text)
}

func TestCustomFeedFilterParams(t *testing.T) {
	_, app := setupTestServer(t)
	token, user := signupTestUser(t, app, "curator")
	otherToken, _ := signupTestUser(t, app, "other")

	createPostViaAPI(t, app, token, "shipping #golang today")
	createPostViaAPI(t, app, token, "weekend plans")
	createPostViaAPI(t, app, otherToken, "also #golang")

	resp := doRequest(t, app, "GET", "/api/feed/custom?hashtags=golang", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var byTag models.FeedResponse
	decodeBody(t, resp, &byTag)
	assert.Len(t, byTag.Data.Posts, 2)

	resp = doRequest(t, app, "GET", "/api/feed/custom?hashtags=golang&users="+user.ID, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var narrowed models.FeedResponse
	decodeBody(t, resp, &narrowed)
	require.Len(t, narrowed.Data.Posts, 1)
	assert.Equal(t, "shipping #golang today", narrowed.Data.Posts[0].Text)
}

func TestUnknownFeedType(t *testing.T) {
	_, app := setupTestServer(t)

	resp := doRequest(t, app, "GET", "/api/feed/trending", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUserPostsFeed(t *testing.T) {
	_, app := setupTestServer(t)
	token, user := signupTestUser(t, app, "author")
	createPostViaAPI(t, app, token, "standalone")

	resp := doRequest(t, app, "GET", "/api/users/"+user.ID+"/posts", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope models.FeedResponse
	decodeBody(t, resp, &envelope)
	require.Len(t, envelope.Data.Posts, 1)
	assert.Equal(t, "standalone", envelope.Data.Posts[0].Text)
}
