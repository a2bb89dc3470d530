package feedstore

import (
	"context"
	"sync"
	"time"

	"murmur/models"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRegistryCapacity bounds how many feed keys the registry retains.
// Least-recently-fetched entries are evicted beyond this.
const DefaultRegistryCapacity = 50

// feedEntry is the registry's per-feed state. The id list holds weak
// references into the entity table: a feed never owns a post.
type feedEntry struct {
	feedType   FeedType
	ids        []string
	nextCursor *string
	hasMore    bool
	loading    bool
	refreshing bool
	lastFetch  time.Time
	lastErr    string

	// generation advances each time a fetch result is applied to this entry.
	// A fetch that started against an older generation is stale and discarded.
	generation uint64

	// selector memoization
	snapshot        []*models.Post
	snapshotVersion uint64
}

// FeedState is a read-only view of one registry entry for UI consumption.
type FeedState struct {
	PostIDs    []string
	NextCursor *string
	HasMore    bool
	Loading    bool
	Refreshing bool
	LastFetch  time.Time
	Err        string
}

// Store is the normalized feed cache. One instance is constructed at
// application start and shared; all methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	client  *Client
	posts   map[string]*models.Post
	feeds   *lru.Cache[string, *feedEntry]
	version uint64
}

// StoreOption configures a Store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	capacity int
}

// WithRegistryCapacity bounds the feed registry to n entries.
func WithRegistryCapacity(n int) StoreOption {
	return func(c *storeConfig) { c.capacity = n }
}

// NewStore creates a feed store backed by the given orchestrator client.
func NewStore(client *Client, opts ...StoreOption) *Store {
	cfg := storeConfig{capacity: DefaultRegistryCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.capacity < 1 {
		cfg.capacity = DefaultRegistryCapacity
	}

	feeds, _ := lru.New[string, *feedEntry](cfg.capacity)
	return &Store{
		client: client,
		posts:  make(map[string]*models.Post),
		feeds:  feeds,
	}
}

// Reset drops every post and feed, e.g. on logout or manual cache clear.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = make(map[string]*models.Post)
	s.feeds.Purge()
	s.version++
}

// Post returns the entity-table record for an id, or nil when absent.
func (s *Store) Post(id string) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts[id]
}

// Refresh loads the first page of a feed, replacing its id list.
func (s *Store) Refresh(ctx context.Context, req FeedRequest) error {
	return s.fetch(ctx, req, true)
}

// LoadMore appends the next page of a feed. It is a no-op when the feed has
// no further pages or a page load is already in flight.
func (s *Store) LoadMore(ctx context.Context, req FeedRequest) error {
	return s.fetch(ctx, req, false)
}

// fetch runs one orchestrated load: flag the entry, call the network without
// holding the lock, then reconcile. If a competing fetch finished first the
// stale result is discarded. A load is a refresh exactly
// when no cursor is supplied; the very first page of a feed therefore
// refreshes even when reached through LoadMore.
func (s *Store) fetch(ctx context.Context, req FeedRequest, forceFirstPage bool) error {
	key := req.Key()

	s.mu.Lock()
	entry := s.entryLocked(key, req.Type)

	if !forceFirstPage && len(entry.ids) > 0 && !entry.hasMore {
		s.mu.Unlock()
		return nil
	}

	cursor := ""
	if !forceFirstPage && entry.nextCursor != nil {
		cursor = *entry.nextCursor
	}
	isRefresh := cursor == ""

	if isRefresh {
		if entry.refreshing {
			s.mu.Unlock()
			return nil
		}
		entry.refreshing = true
	} else {
		if entry.loading {
			s.mu.Unlock()
			return nil
		}
		entry.loading = true
	}
	entry.lastErr = ""

	gen := entry.generation
	s.mu.Unlock()

	page, err := s.client.FetchFeed(ctx, req, cursor)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.feeds.Get(key)
	if !ok {
		// Evicted while in flight; nothing to reconcile into.
		return err
	}
	if entry.generation != gen {
		// A competing fetch completed first; this response is stale.
		s.clearFlagLocked(entry, isRefresh)
		return err
	}

	if err != nil {
		s.clearFlagLocked(entry, isRefresh)
		entry.lastErr = err.Error()
		s.version++
		return err
	}

	s.reconcileLocked(entry, page, isRefresh)
	return nil
}

// reconcileLocked applies a fetched page: upsert every post whole-record
// (last fetch wins), then replace or set-difference-append the id list.
func (s *Store) reconcileLocked(entry *feedEntry, page *models.FeedPage, isRefresh bool) {
	fetched := make([]string, 0, len(page.Posts))
	for _, p := range page.Posts {
		post := p
		s.posts[post.ID] = post
		fetched = append(fetched, post.ID)
	}

	if isRefresh {
		entry.ids = dedupe(fetched)
	} else {
		seen := make(map[string]bool, len(entry.ids))
		for _, id := range entry.ids {
			seen[id] = true
		}
		for _, id := range fetched {
			if !seen[id] {
				seen[id] = true
				entry.ids = append(entry.ids, id)
			}
		}
	}

	entry.nextCursor = page.NextCursor
	entry.hasMore = page.HasMore
	entry.loading = false
	entry.refreshing = false
	entry.lastFetch = time.Now()
	entry.lastErr = ""
	entry.generation++
	s.version++
}

func (s *Store) clearFlagLocked(entry *feedEntry, isRefresh bool) {
	if isRefresh {
		entry.refreshing = false
	} else {
		entry.loading = false
	}
}

// entryLocked returns the registry entry for a key, creating it lazily.
func (s *Store) entryLocked(key string, feedType FeedType) *feedEntry {
	if entry, ok := s.feeds.Get(key); ok {
		return entry
	}
	entry := &feedEntry{feedType: feedType}
	s.feeds.Add(key, entry)
	return entry
}

// State returns a copy of the registry state for a feed, and whether the
// feed has been materialized at all.
func (s *Store) State(req FeedRequest) (FeedState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.feeds.Peek(req.Key())
	if !ok {
		return FeedState{}, false
	}

	ids := make([]string, len(entry.ids))
	copy(ids, entry.ids)
	return FeedState{
		PostIDs:    ids,
		NextCursor: entry.nextCursor,
		HasMore:    entry.hasMore,
		Loading:    entry.loading,
		Refreshing: entry.refreshing,
		LastFetch:  entry.lastFetch,
		Err:        entry.lastErr,
	}, true
}

// Posts hydrates a feed's id list against the entity table, silently
// dropping ids that no longer resolve. The returned slice is memoized:
// repeated calls return the identical slice until the store changes.
func (s *Store) Posts(req FeedRequest) []*models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.feeds.Get(req.Key())
	if !ok {
		return nil
	}

	if entry.snapshot != nil && entry.snapshotVersion == s.version {
		return entry.snapshot
	}

	hydrated := make([]*models.Post, 0, len(entry.ids))
	for _, id := range entry.ids {
		if post, ok := s.posts[id]; ok {
			hydrated = append(hydrated, post)
		}
	}
	entry.snapshot = hydrated
	entry.snapshotVersion = s.version
	return hydrated
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
