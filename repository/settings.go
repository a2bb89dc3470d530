package repository

import (
	"context"
	"errors"

	"murmur/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository stores per-user settings blobs. Values are opaque JSON
// replaced whole on write.
type SettingsRepository interface {
	// Get returns (nil, nil) when the user has no blob under the key.
	Get(ctx context.Context, userID, key string) (*models.Setting, error)
	Put(ctx context.Context, userID, key string, value datatypes.JSON) (*models.Setting, error)
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, userID, key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingsRepository) Put(ctx context.Context, userID, key string, value datatypes.JSON) (*models.Setting, error) {
	setting := &models.Setting{
		UserID: userID,
		Key:    key,
		Value:  value,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}
