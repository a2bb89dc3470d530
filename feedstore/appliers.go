package feedstore

import (
	"context"

	"murmur/models"
)

// The appliers below adjust counters by ±1 relative to the flag value held
// immediately before the server-confirmed toggle. The mutation endpoints
// return only the new boolean, so client-displayed counts can drift from
// server truth until the next full fetch of the post: an accepted
// responsiveness tradeoff, not an error.

// ApplyLike sets a post's like flag to the confirmed state. A confirmation
// matching the current flag changes nothing; an unknown post id is a no-op.
func (s *Store) ApplyLike(postID string, liked bool) {
	s.applyToggle(postID, liked,
		func(p *models.Post) *bool { return &p.IsLiked },
		func(p *models.Post) *int { return &p.LikeCount })
}

// ApplyRepost sets a post's repost flag to the confirmed state.
func (s *Store) ApplyRepost(postID string, reposted bool) {
	s.applyToggle(postID, reposted,
		func(p *models.Post) *bool { return &p.IsReposted },
		func(p *models.Post) *int { return &p.RepostCount })
}

// ApplyBookmark sets a post's bookmark flag to the confirmed state.
func (s *Store) ApplyBookmark(postID string, bookmarked bool) {
	s.applyToggle(postID, bookmarked,
		func(p *models.Post) *bool { return &p.IsBookmarked },
		func(p *models.Post) *int { return &p.BookmarkCount })
}

func (s *Store) applyToggle(postID string, confirmed bool, flag func(*models.Post) *bool, counter func(*models.Post) *int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		// Never fetched or evicted; do not create a placeholder.
		return
	}

	f := flag(post)
	if *f == confirmed {
		return
	}
	*f = confirmed

	n := counter(post)
	if confirmed {
		*n++
	} else if *n > 0 {
		*n--
	}
	s.version++
}

// ApplyCreate inserts a freshly created post into the entity table and
// prepends its id to every loaded broad feed (home/explore/following).
// Narrower feeds pick it up on their next fresh fetch.
func (s *Store) ApplyCreate(post *models.Post) {
	if post == nil || post.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts[post.ID] = post

	for _, key := range s.feeds.Keys() {
		entry, ok := s.feeds.Peek(key)
		if !ok || !broadFeedTypes[entry.feedType] {
			continue
		}
		if containsID(entry.ids, post.ID) {
			continue
		}
		entry.ids = append([]string{post.ID}, entry.ids...)
	}
	s.version++
}

// Like toggles a like on the server, then reconciles the confirmed state.
func (s *Store) Like(ctx context.Context, postID string) error {
	liked, err := s.client.Like(ctx, postID)
	if err != nil {
		return err
	}
	s.ApplyLike(postID, liked)
	return nil
}

// Unlike removes a like on the server, then reconciles the confirmed state.
func (s *Store) Unlike(ctx context.Context, postID string) error {
	liked, err := s.client.Unlike(ctx, postID)
	if err != nil {
		return err
	}
	s.ApplyLike(postID, liked)
	return nil
}

// Repost toggles a repost on the server, then reconciles the confirmed state.
func (s *Store) Repost(ctx context.Context, postID string) error {
	reposted, err := s.client.Repost(ctx, postID)
	if err != nil {
		return err
	}
	s.ApplyRepost(postID, reposted)
	return nil
}

// Unrepost removes a repost on the server, then reconciles the confirmed state.
func (s *Store) Unrepost(ctx context.Context, postID string) error {
	reposted, err := s.client.Unrepost(ctx, postID)
	if err != nil {
		return err
	}
	s.ApplyRepost(postID, reposted)
	return nil
}

// Bookmark toggles a bookmark on the server, then reconciles the confirmed state.
func (s *Store) Bookmark(ctx context.Context, postID string) error {
	bookmarked, err := s.client.Bookmark(ctx, postID)
	if err != nil {
		return err
	}
	s.ApplyBookmark(postID, bookmarked)
	return nil
}

// Unbookmark removes a bookmark on the server, then reconciles the confirmed state.
func (s *Store) Unbookmark(ctx context.Context, postID string) error {
	bookmarked, err := s.client.Unbookmark(ctx, postID)
	if err != nil {
		return err
	}
	s.ApplyBookmark(postID, bookmarked)
	return nil
}

// CreatePost creates a post on the server and fans it out locally.
func (s *Store) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	post, err := s.client.CreatePost(ctx, input)
	if err != nil {
		return nil, err
	}
	s.ApplyCreate(post)
	return post, nil
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
