package feedstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedKeyDeterminism(t *testing.T) {
	a := FeedRequest{
		Type: FeedCustom,
		Filters: &Filters{
			Users:    []string{"u1", "u2"},
			Hashtags: []string{"go", "news"},
			Keywords: []string{"release"},
		},
	}
	b := FeedRequest{
		Type: FeedCustom,
		Filters: &Filters{
			Users:    []string{"u2", "u1"},
			Hashtags: []string{"news", "go"},
			Keywords: []string{"release"},
		},
	}

	// Filters compare by value, independent of slice order.
	assert.Equal(t, a.Key(), b.Key())
}

func TestFeedKeyDistinguishesShapes(t *testing.T) {
	tests := []struct {
		name string
		a, b FeedRequest
	}{
		{
			name: "different types",
			a:    FeedRequest{Type: FeedHome},
			b:    FeedRequest{Type: FeedFollowing},
		},
		{
			name: "different parents",
			a:    FeedRequest{Type: FeedReplies, ParentID: "p1"},
			b:    FeedRequest{Type: FeedReplies, ParentID: "p2"},
		},
		{
			name: "different authors",
			a:    FeedRequest{Type: FeedPosts, AuthorID: "u1"},
			b:    FeedRequest{Type: FeedPosts, AuthorID: "u2"},
		},
		{
			name: "different filter values",
			a:    FeedRequest{Type: FeedCustom, Filters: &Filters{Keywords: []string{"a"}}},
			b:    FeedRequest{Type: FeedCustom, Filters: &Filters{Keywords: []string{"b"}}},
		},
		{
			name: "media-only flag",
			a:    FeedRequest{Type: FeedCustom, Filters: &Filters{MediaOnly: true}},
			b:    FeedRequest{Type: FeedCustom, Filters: &Filters{MediaOnly: false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, tt.a.Key(), tt.b.Key())
		})
	}
}

func TestFeedKeyLimitIgnored(t *testing.T) {
	// Page size is not part of the feed identity.
	a := FeedRequest{Type: FeedHome, Limit: 20}
	b := FeedRequest{Type: FeedHome, Limit: 50}
	assert.Equal(t, a.Key(), b.Key())
}
