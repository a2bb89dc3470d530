package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room lifecycle states.
const (
	RoomScheduled = "scheduled"
	RoomLive      = "live"
	RoomEnded     = "ended"
)

// Participant roles within a room.
const (
	RoleHost     = "host"
	RoleSpeaker  = "speaker"
	RoleListener = "listener"
)

// Room represents a live audio space. Actual media transport is handled by an
// external real-time service; this model only tracks lifecycle and membership.
type Room struct {
	ID           string            `gorm:"primaryKey;size:36" json:"id"`
	HostID       string            `gorm:"size:36;not null;index" json:"host_id"`
	Host         User              `gorm:"foreignKey:HostID" json:"host"`
	Title        string            `gorm:"not null" json:"title"`
	Description  string            `json:"description"`
	Status       string            `gorm:"not null;default:scheduled;index" json:"status"`
	StartedAt    *time.Time        `json:"started_at,omitempty"`
	EndedAt      *time.Time        `json:"ended_at,omitempty"`
	Participants []RoomParticipant `gorm:"foreignKey:RoomID" json:"participants,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// BeforeCreate assigns a server-side opaque identifier.
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// RoomParticipant is a user's membership in a room.
// The combination of RoomID and UserID must be unique.
type RoomParticipant struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	RoomID   string    `gorm:"size:36;not null;uniqueIndex:idx_room_user" json:"room_id"`
	UserID   string    `gorm:"size:36;not null;uniqueIndex:idx_room_user" json:"user_id"`
	User     User      `gorm:"foreignKey:UserID" json:"user"`
	Role     string    `gorm:"not null;default:listener" json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// RoomEvent is the payload fanned out to websocket subscribers when room
// membership or lifecycle changes.
type RoomEvent struct {
	RoomID string `json:"room_id"`
	Type   string `json:"type"` // joined | left | started | ended
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
}
