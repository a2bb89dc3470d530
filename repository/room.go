package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"murmur/models"

	"gorm.io/gorm"
)

// ErrRoomNotLive is returned when joining or leaving a room that is not live.
var ErrRoomNotLive = errors.New("room is not live")

// RoomRepository defines the interface for live-room bookkeeping. Media
// transport is handled by an external real-time service; only lifecycle and
// membership live here.
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id string) (*models.Room, error)
	ListLive(ctx context.Context, limit, offset int) ([]*models.Room, error)
	Start(ctx context.Context, id string) error
	End(ctx context.Context, id string) error
	Join(ctx context.Context, roomID, userID, role string) (*models.RoomParticipant, error)
	Leave(ctx context.Context, roomID, userID string) error
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Host").
		Preload("Participants").
		Preload("Participants.User").
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) ListLive(ctx context.Context, limit, offset int) ([]*models.Room, error) {
	var rooms []*models.Room
	err := r.db.WithContext(ctx).
		Preload("Host").
		Where("status = ?", models.RoomLive).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rooms).Error
	return rooms, err
}

func (r *roomRepository) Start(ctx context.Context, id string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND status = ?", id, models.RoomScheduled).
		Updates(map[string]any{"status": models.RoomLive, "started_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("room %s cannot start: %w", id, ErrRoomNotLive)
	}
	return nil
}

// End moves a live room to ended and ejects all participants.
func (r *roomRepository) End(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Room{}).
			Where("id = ? AND status = ?", id, models.RoomLive).
			Updates(map[string]any{"status": models.RoomEnded, "ended_at": &now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRoomNotLive
		}
		return tx.Where("room_id = ?", id).Delete(&models.RoomParticipant{}).Error
	})
}

func (r *roomRepository) Join(ctx context.Context, roomID, userID, role string) (*models.RoomParticipant, error) {
	var participant *models.RoomParticipant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, "id = ?", roomID).Error; err != nil {
			return err
		}
		if room.Status != models.RoomLive {
			return ErrRoomNotLive
		}

		var existing models.RoomParticipant
		err := tx.Where("room_id = ? AND user_id = ?", roomID, userID).First(&existing).Error
		switch {
		case err == nil:
			// Already in the room; joining again is a no-op.
			participant = &existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			participant = &models.RoomParticipant{
				RoomID:   roomID,
				UserID:   userID,
				Role:     role,
				JoinedAt: time.Now(),
			}
			return tx.Create(participant).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (r *roomRepository) Leave(ctx context.Context, roomID, userID string) error {
	return r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&models.RoomParticipant{}).Error
}
