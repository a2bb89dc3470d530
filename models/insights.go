package models

// DayCount is one bucket of a per-day activity series.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Insights aggregates a user's account activity for the insights endpoint.
type Insights struct {
	PostCount         int64      `json:"post_count"`
	LikesReceived     int64      `json:"likes_received"`
	RepostsReceived   int64      `json:"reposts_received"`
	BookmarksReceived int64      `json:"bookmarks_received"`
	RepliesReceived   int64      `json:"replies_received"`
	FollowerCount     int64      `json:"follower_count"`
	PostsPerDay       []DayCount `json:"posts_per_day"`
}
