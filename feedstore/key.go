// Package feedstore implements the client-side normalized feed cache: a
// single entity table of posts shared by every feed, a bounded registry of
// per-feed pagination state, a fetch orchestrator, and mutation appliers for
// optimistic engagement updates.
package feedstore

import (
	"sort"
	"strconv"
	"strings"
)

// FeedType identifies one server feed endpoint.
type FeedType string

const (
	FeedExplore   FeedType = "explore"
	FeedHome      FeedType = "home"
	FeedFollowing FeedType = "following"
	FeedPosts     FeedType = "posts"
	FeedMedia     FeedType = "media"
	FeedQuotes    FeedType = "quotes"
	FeedReposts   FeedType = "reposts"
	FeedReplies   FeedType = "replies"
	FeedCustom    FeedType = "custom"
)

// broadFeedTypes are the feeds a newly created post is fanned out to.
// Narrower feeds (reply threads, custom filters) pick the post up on their
// next fresh fetch if the server includes it.
var broadFeedTypes = map[FeedType]bool{
	FeedHome:      true,
	FeedExplore:   true,
	FeedFollowing: true,
}

// Filters narrows a custom feed. Order of values never affects the feed key.
type Filters struct {
	Users     []string
	Hashtags  []string
	Keywords  []string
	MediaOnly bool
}

// FeedRequest describes one feed the store can materialize.
type FeedRequest struct {
	Type     FeedType
	ParentID string
	// AuthorID scopes posts/media/quotes/reposts feeds to one author.
	AuthorID string
	Filters  *Filters
	Limit    int
}

// Key derives the registry key for this request. Two requests with equal
// type, parent, author and filter values (compared by value, independent of
// slice order) always produce the same key.
func (r FeedRequest) Key() string {
	var b strings.Builder
	b.WriteString(string(r.Type))
	b.WriteByte('|')
	b.WriteString(r.ParentID)
	b.WriteByte('|')
	b.WriteString(r.AuthorID)
	if r.Filters != nil {
		b.WriteByte('|')
		b.WriteString(canonicalValues("users", r.Filters.Users))
		b.WriteByte('|')
		b.WriteString(canonicalValues("hashtags", r.Filters.Hashtags))
		b.WriteByte('|')
		b.WriteString(canonicalValues("keywords", r.Filters.Keywords))
		b.WriteByte('|')
		b.WriteString("mediaOnly=" + strconv.FormatBool(r.Filters.MediaOnly))
	}
	return b.String()
}

// canonicalValues renders a filter value set sorted, so key equality is
// insensitive to the order callers happened to build the slice in.
func canonicalValues(name string, values []string) string {
	if len(values) == 0 {
		return name + "="
	}
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return name + "=" + strings.Join(sorted, ",")
}
