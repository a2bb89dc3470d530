package models

// Feed types served by the feed endpoints. "home" is the viewer plus followed
// authors, "following" is followed authors only, "explore" is everyone.
const (
	FeedExplore   = "explore"
	FeedHome      = "home"
	FeedFollowing = "following"
	FeedPosts     = "posts"
	FeedMedia     = "media"
	FeedQuotes    = "quotes"
	FeedReposts   = "reposts"
	FeedReplies   = "replies"
	FeedCustom    = "custom"
)

// FeedPage is the payload of a single paginated feed response. NextCursor is
// opaque to clients; nil means the final page.
type FeedPage struct {
	Posts      []*Post `json:"posts"`
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}

// FeedResponse is the envelope every feed endpoint returns.
type FeedResponse struct {
	Data FeedPage `json:"data"`
}

// CustomFilters narrows a custom feed. All filters are conjunctive; within a
// single filter, values are disjunctive.
type CustomFilters struct {
	Users     []string `json:"users,omitempty"`
	Hashtags  []string `json:"hashtags,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	MediaOnly bool     `json:"mediaOnly,omitempty"`
}

// FeedQuery is the repository-level description of one feed page request.
type FeedQuery struct {
	Type     string
	ParentID string
	// AuthorID scopes posts/media/quotes/reposts feeds to a single author.
	AuthorID string
	// ViewerID drives home/following membership and viewer-relative flags.
	ViewerID string
	Limit    int
	Cursor   string
	Filters  *CustomFilters
}
