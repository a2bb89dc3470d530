package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents one user-authored content item. A post with ParentID set is
// a reply; a post with QuoteID set quotes another post.
type Post struct {
	ID       string  `gorm:"primaryKey;size:36" json:"id"`
	Text     string  `gorm:"not null" json:"text"`
	UserID   string  `gorm:"size:36;not null;index" json:"user_id"`
	User     User    `gorm:"foreignKey:UserID" json:"user"`
	ParentID *string `gorm:"size:36;index" json:"parent_id,omitempty"`
	QuoteID  *string `gorm:"size:36;index" json:"quote_id,omitempty"`
	Media    []Media `gorm:"foreignKey:PostID" json:"media,omitempty"`

	// Engagement counters are persisted and adjusted in place by the
	// repository's toggle operations, never recomputed per request.
	LikeCount     int `gorm:"not null;default:0" json:"like_count"`
	RepostCount   int `gorm:"not null;default:0" json:"repost_count"`
	BookmarkCount int `gorm:"not null;default:0" json:"bookmark_count"`
	ReplyCount    int `gorm:"not null;default:0" json:"reply_count"`

	// Viewer-relative flags are not persisted; computed at query time for the
	// requesting user.
	IsLiked      bool `gorm:"-" json:"is_liked"`
	IsReposted   bool `gorm:"-" json:"is_reposted"`
	IsBookmarked bool `gorm:"-" json:"is_bookmarked"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a server-side opaque identifier.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Media is an attachment reference on a post. Upload and storage of the
// underlying object happens elsewhere; only the reference lives here.
type Media struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    string    `gorm:"size:36;not null;index" json:"post_id"`
	URL       string    `gorm:"not null" json:"url"`
	Type      string    `gorm:"not null;default:image" json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
