package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// List is a user-curated collection of accounts whose posts can be read as a
// single feed.
type List struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	OwnerID     string       `gorm:"size:36;not null;index" json:"owner_id"`
	Name        string       `gorm:"not null" json:"name"`
	Description string       `json:"description"`
	Members     []ListMember `gorm:"foreignKey:ListID" json:"members,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// BeforeCreate assigns a server-side opaque identifier.
func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// ListMember is a user's membership in a list.
// The combination of ListID and UserID must be unique.
type ListMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListID    string    `gorm:"size:36;not null;uniqueIndex:idx_list_user" json:"list_id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_list_user" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time `json:"created_at"`
}
