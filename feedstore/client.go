package feedstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"murmur/models"

	"github.com/hashicorp/go-retryablehttp"
)

// feedPaths is the static mapping from feed type to server endpoint.
// Replies are special-cased because the parent id is a path segment.
var feedPaths = map[FeedType]string{
	FeedExplore:   "/api/feed/explore",
	FeedHome:      "/api/feed/home",
	FeedFollowing: "/api/feed/following",
	FeedPosts:     "/api/feed/posts",
	FeedMedia:     "/api/feed/media",
	FeedQuotes:    "/api/feed/quotes",
	FeedReposts:   "/api/feed/reposts",
	FeedCustom:    "/api/feed/custom",
}

// Client is the fetch orchestrator's HTTP layer. Retry policy lives entirely
// in the underlying retryable client's configuration; the store above never
// retries.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	token   string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sets the bearer token attached to every request.
func WithToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithRetryMax overrides how many times the underlying HTTP client retries.
func WithRetryMax(n int) ClientOption {
	return func(c *Client) { c.http.RetryMax = n }
}

// NewClient creates an orchestrator client for the given API base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	hc := retryablehttp.NewClient()
	hc.RetryMax = 2
	hc.Logger = nil

	c := &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken updates the bearer token (e.g. after login).
func (c *Client) SetToken(token string) {
	c.token = token
}

// FetchFeed resolves the request to its endpoint and returns one page.
// cursor empty means a first-page/refresh load.
func (c *Client) FetchFeed(ctx context.Context, req FeedRequest, cursor string) (*models.FeedPage, error) {
	path, ok := feedPaths[req.Type]
	if req.Type == FeedReplies {
		if req.ParentID == "" {
			return nil, fmt.Errorf("replies feed requires a parent id")
		}
		path, ok = "/api/feed/replies/"+url.PathEscape(req.ParentID), true
	}
	if !ok {
		return nil, fmt.Errorf("unknown feed type %q", req.Type)
	}

	q := url.Values{}
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if req.AuthorID != "" {
		q.Set("user", req.AuthorID)
	}
	if req.Type == FeedCustom && req.Filters != nil {
		if len(req.Filters.Users) > 0 {
			q.Set("users", strings.Join(req.Filters.Users, ","))
		}
		if len(req.Filters.Hashtags) > 0 {
			q.Set("hashtags", strings.Join(req.Filters.Hashtags, ","))
		}
		if len(req.Filters.Keywords) > 0 {
			q.Set("keywords", strings.Join(req.Filters.Keywords, ","))
		}
		if req.Filters.MediaOnly {
			q.Set("mediaOnly", "true")
		}
	}

	var envelope models.FeedResponse
	if err := c.do(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// CreatePostInput is the body of a create-post call.
type CreatePostInput struct {
	Text     string   `json:"text"`
	ParentID *string  `json:"parent_id,omitempty"`
	QuoteID  *string  `json:"quote_id,omitempty"`
	Media    []string `json:"media,omitempty"`
}

// CreatePost creates a post and returns the server-assigned record.
func (c *Client) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts/", input, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Like toggles the like state on and returns the confirmed state.
func (c *Client) Like(ctx context.Context, postID string) (bool, error) {
	return c.toggle(ctx, postID, "like", "liked")
}

// Unlike toggles the like state off and returns the confirmed state.
func (c *Client) Unlike(ctx context.Context, postID string) (bool, error) {
	return c.toggle(ctx, postID, "unlike", "liked")
}

// Repost toggles the repost state on and returns the confirmed state.
func (c *Client) Repost(ctx context.Context, postID string) (bool, error) {
	return c.toggle(ctx, postID, "repost", "reposted")
}

// Unrepost toggles the repost state off and returns the confirmed state.
func (c *Client) Unrepost(ctx context.Context, postID string) (bool, error) {
	return c.toggle(ctx, postID, "unrepost", "reposted")
}

// Bookmark toggles the bookmark state on and returns the confirmed state.
func (c *Client) Bookmark(ctx context.Context, postID string) (bool, error) {
	return c.toggle(ctx, postID, "bookmark", "bookmarked")
}

// Unbookmark toggles the bookmark state off and returns the confirmed state.
func (c *Client) Unbookmark(ctx context.Context, postID string) (bool, error) {
	return c.toggle(ctx, postID, "unbookmark", "bookmarked")
}

// toggle posts to a mutation endpoint and extracts the confirmation boolean.
// These endpoints return only the new state, never a recomputed post.
func (c *Client) toggle(ctx context.Context, postID, action, field string) (bool, error) {
	path := fmt.Sprintf("/api/posts/%s/%s", url.PathEscape(postID), action)
	var confirm map[string]bool
	if err := c.do(ctx, http.MethodPost, path, nil, &confirm); err != nil {
		return false, err
	}
	return confirm[field], nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, dest any) error {
	var rawBody any
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rawBody = encoded
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, rawBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// decodeError turns a non-2xx response into a readable error, preferring the
// server's own message when the body carries one.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload models.ErrorResponse
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, payload.Message)
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("server error (%d)", resp.StatusCode)
}
