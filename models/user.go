// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account in the Murmur application.
type User struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Username    string         `gorm:"unique;not null" json:"username"`
	Email       string         `gorm:"unique;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	DisplayName string         `json:"display_name"`
	Bio         string         `json:"bio"`
	Avatar      string         `json:"avatar"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// FollowerCount and FollowingCount are not persisted; computed at query time
	FollowerCount  int `gorm:"-" json:"follower_count"`
	FollowingCount int `gorm:"-" json:"following_count"`
	// IsFollowing indicates whether the requesting user follows this user (computed)
	IsFollowing bool `gorm:"-" json:"is_following"`
}

// BeforeCreate assigns a server-side opaque identifier.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Follow represents a directed follow edge between two users.
// The combination of FollowerID and FolloweeID must be unique.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID string    `gorm:"size:36;not null;uniqueIndex:idx_follower_followee" json:"follower_id"`
	FolloweeID string    `gorm:"size:36;not null;uniqueIndex:idx_follower_followee" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
