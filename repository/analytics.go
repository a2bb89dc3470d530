package repository

import (
	"context"
	"time"

	"murmur/models"

	"gorm.io/gorm"
)

// AnalyticsRepository computes account insight aggregates.
type AnalyticsRepository interface {
	// UserInsights aggregates activity for a user over the trailing `days`
	// window (posts-per-day series only; totals are lifetime).
	UserInsights(ctx context.Context, userID string, days int) (*models.Insights, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) UserInsights(ctx context.Context, userID string, days int) (*models.Insights, error) {
	insights := &models.Insights{}
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Post{}).
		Where("user_id = ?", userID).
		Count(&insights.PostCount).Error; err != nil {
		return nil, err
	}

	authored := r.db.Model(&models.Post{}).Select("id").Where("user_id = ?", userID)

	if err := db.Model(&models.Like{}).
		Where("post_id IN (?)", authored).
		Count(&insights.LikesReceived).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Repost{}).
		Where("post_id IN (?)", authored).
		Count(&insights.RepostsReceived).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Bookmark{}).
		Where("post_id IN (?)", authored).
		Count(&insights.BookmarksReceived).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Post{}).
		Where("parent_id IN (?)", authored).
		Count(&insights.RepliesReceived).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&insights.FollowerCount).Error; err != nil {
		return nil, err
	}

	series, err := r.postsPerDay(ctx, userID, days)
	if err != nil {
		return nil, err
	}
	insights.PostsPerDay = series
	return insights, nil
}

// postsPerDay buckets post timestamps in Go rather than SQL so the grouping
// behaves identically on postgres and the sqlite test driver.
func (r *analyticsRepository) postsPerDay(ctx context.Context, userID string, days int) ([]models.DayCount, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := start.AddDate(0, 0, -(days - 1))

	var stamps []time.Time
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Pluck("created_at", &stamps).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, days)
	for _, ts := range stamps {
		counts[ts.Format("2006-01-02")]++
	}

	series := make([]models.DayCount, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, models.DayCount{Day: day, Count: counts[day]})
	}
	return series, nil
}
