// Package repository contains data-access interfaces and their GORM implementations.
package repository

import (
	"context"
	"fmt"
	"strings"

	"murmur/models"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id, viewerID string) (*models.Post, error)
	Delete(ctx context.Context, id string) error
	// Feed returns one page of posts for the given query. The returned page
	// preserves database order; pagination is keyset-based on (created_at, id).
	Feed(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error)
	// ToggleLike moves the viewer's like state to `want` and returns the
	// resulting state. Repeated calls with the same `want` are idempotent and
	// never double-count.
	ToggleLike(ctx context.Context, userID, postID string, want bool) (bool, error)
	ToggleRepost(ctx context.Context, userID, postID string, want bool) (bool, error)
	ToggleBookmark(ctx context.Context, userID, postID string, want bool) (bool, error)
	Search(ctx context.Context, query string, limit, offset int, viewerID string) ([]*models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if post.ParentID != nil {
			return tx.Model(&models.Post{}).
				Where("id = ?", *post.ParentID).
				Update("reply_count", gorm.Expr("reply_count + 1")).Error
		}
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id, viewerID string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Media").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachViewerState(ctx, []*models.Post{&post}, viewerID); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, "id = ?", id).Error; err != nil {
			return err
		}
		if post.ParentID != nil {
			return tx.Model(&models.Post{}).
				Where("id = ? AND reply_count > 0", *post.ParentID).
				Update("reply_count", gorm.Expr("reply_count - 1")).Error
		}
		return nil
	})
}

func (r *postRepository) Feed(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error) {
	db := r.db.WithContext(ctx).Model(&models.Post{}).
		Preload("User").
		Preload("Media")

	followees := func(viewer string) *gorm.DB {
		return r.db.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", viewer)
	}

	switch q.Type {
	case models.FeedExplore:
		// everyone
	case models.FeedHome:
		db = db.Where("user_id = ? OR user_id IN (?)", q.ViewerID, followees(q.ViewerID))
	case models.FeedFollowing:
		db = db.Where("user_id IN (?)", followees(q.ViewerID))
	case models.FeedPosts:
		db = db.Where("user_id = ? AND parent_id IS NULL", q.AuthorID)
	case models.FeedMedia:
		db = db.Where("id IN (?)", r.db.Model(&models.Media{}).Select("post_id"))
		if q.AuthorID != "" {
			db = db.Where("user_id = ?", q.AuthorID)
		}
	case models.FeedQuotes:
		db = db.Where("quote_id IS NOT NULL")
		if q.AuthorID != "" {
			db = db.Where("user_id = ?", q.AuthorID)
		}
	case models.FeedReposts:
		db = db.Where("id IN (?)", r.db.Model(&models.Repost{}).
			Select("post_id").Where("user_id = ?", q.AuthorID))
	case models.FeedReplies:
		db = db.Where("parent_id = ?", q.ParentID)
	case models.FeedCustom:
		db = applyCustomFilters(r.db, db, q.Filters)
	default:
		return nil, fmt.Errorf("unknown feed type %q", q.Type)
	}

	if at, id, ok := decodeCursor(q.Cursor); ok {
		db = db.Where("created_at < ? OR (created_at = ? AND id < ?)", at, at, id)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	var posts []*models.Post
	// Fetch one extra row to learn whether another page exists.
	err := db.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&posts).Error
	if err != nil {
		return nil, err
	}

	page := &models.FeedPage{HasMore: len(posts) > limit}
	if page.HasMore {
		posts = posts[:limit]
	}
	if page.HasMore && len(posts) > 0 {
		last := posts[len(posts)-1]
		cursor := encodeCursor(last.CreatedAt, last.ID)
		page.NextCursor = &cursor
	}

	if err := r.attachViewerState(ctx, posts, q.ViewerID); err != nil {
		return nil, err
	}
	page.Posts = posts
	return page, nil
}

// applyCustomFilters narrows the query per the custom-feed filter set.
// Filters are conjunctive; values within one filter are disjunctive.
func applyCustomFilters(root *gorm.DB, db *gorm.DB, f *models.CustomFilters) *gorm.DB {
	if f == nil {
		return db
	}
	if len(f.Users) > 0 {
		db = db.Where("user_id IN ?", f.Users)
	}
	if len(f.Hashtags) > 0 {
		conds := make([]string, 0, len(f.Hashtags))
		args := make([]any, 0, len(f.Hashtags))
		for _, tag := range f.Hashtags {
			conds = append(conds, "LOWER(text) LIKE ?")
			args = append(args, "%#"+strings.ToLower(strings.TrimPrefix(tag, "#"))+"%")
		}
		db = db.Where(strings.Join(conds, " OR "), args...)
	}
	if len(f.Keywords) > 0 {
		conds := make([]string, 0, len(f.Keywords))
		args := make([]any, 0, len(f.Keywords))
		for _, kw := range f.Keywords {
			conds = append(conds, "LOWER(text) LIKE ?")
			args = append(args, "%"+strings.ToLower(kw)+"%")
		}
		db = db.Where(strings.Join(conds, " OR "), args...)
	}
	if f.MediaOnly {
		db = db.Where("id IN (?)", root.Model(&models.Media{}).Select("post_id"))
	}
	return db
}

// attachViewerState fills the viewer-relative flags on each post. Anonymous
// viewers get all-false flags.
func (r *postRepository) attachViewerState(ctx context.Context, posts []*models.Post, viewerID string) error {
	if viewerID == "" || len(posts) == 0 {
		return nil
	}

	ids := lo.Map(posts, func(p *models.Post, _ int) string { return p.ID })

	liked, err := r.markedPostIDs(ctx, &models.Like{}, viewerID, ids)
	if err != nil {
		return err
	}
	reposted, err := r.markedPostIDs(ctx, &models.Repost{}, viewerID, ids)
	if err != nil {
		return err
	}
	bookmarked, err := r.markedPostIDs(ctx, &models.Bookmark{}, viewerID, ids)
	if err != nil {
		return err
	}

	for _, p := range posts {
		p.IsLiked = liked[p.ID]
		p.IsReposted = reposted[p.ID]
		p.IsBookmarked = bookmarked[p.ID]
	}
	return nil
}

func (r *postRepository) markedPostIDs(ctx context.Context, model any, userID string, postIDs []string) (map[string]bool, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(ids, func(id string) (string, bool) { return id, true }), nil
}

func (r *postRepository) ToggleLike(ctx context.Context, userID, postID string, want bool) (bool, error) {
	return r.toggle(ctx, userID, postID, want, "like_count",
		func() any { return &models.Like{UserID: userID, PostID: postID} },
		&models.Like{})
}

func (r *postRepository) ToggleRepost(ctx context.Context, userID, postID string, want bool) (bool, error) {
	return r.toggle(ctx, userID, postID, want, "repost_count",
		func() any { return &models.Repost{UserID: userID, PostID: postID} },
		&models.Repost{})
}

func (r *postRepository) ToggleBookmark(ctx context.Context, userID, postID string, want bool) (bool, error) {
	return r.toggle(ctx, userID, postID, want, "bookmark_count",
		func() any { return &models.Bookmark{UserID: userID, PostID: postID} },
		&models.Bookmark{})
}

// toggle moves a (user, post) marker row to the wanted state and adjusts the
// post's counter by ±1 only when the state actually changed.
func (r *postRepository) toggle(ctx context.Context, userID, postID string, want bool, counter string, newRow func() any, model any) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return gorm.ErrRecordNotFound
		}

		var current int64
		if err := tx.Model(model).
			Where("user_id = ? AND post_id = ?", userID, postID).
			Count(&current).Error; err != nil {
			return err
		}
		has := current > 0
		if has == want {
			return nil
		}

		if want {
			if err := tx.Create(newRow()).Error; err != nil {
				return err
			}
			return tx.Model(&models.Post{}).
				Where("id = ?", postID).
				Update(counter, gorm.Expr(counter+" + 1")).Error
		}

		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(model).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND "+counter+" > 0", postID).
			Update(counter, gorm.Expr(counter+" - 1")).Error
	})
	if err != nil {
		return false, err
	}
	return want, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit, offset int, viewerID string) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Media").
		Where("LOWER(text) LIKE ?", "%"+strings.ToLower(query)+"%").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachViewerState(ctx, posts, viewerID); err != nil {
		return nil, err
	}
	return posts, nil
}
