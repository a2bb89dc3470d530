package repository

import (
	"context"

	"murmur/models"

	"gorm.io/gorm"
)

// ListRepository defines the interface for user-list operations.
type ListRepository interface {
	Create(ctx context.Context, list *models.List) error
	GetByID(ctx context.Context, id string) (*models.List, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*models.List, error)
	Update(ctx context.Context, list *models.List) error
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, listID, userID string) error
	RemoveMember(ctx context.Context, listID, userID string) error
	MemberIDs(ctx context.Context, listID string) ([]string, error)
}

type listRepository struct {
	db *gorm.DB
}

// NewListRepository creates a new list repository.
func NewListRepository(db *gorm.DB) ListRepository {
	return &listRepository{db: db}
}

func (r *listRepository) Create(ctx context.Context, list *models.List) error {
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *listRepository) GetByID(ctx context.Context, id string) (*models.List, error) {
	var list models.List
	err := r.db.WithContext(ctx).
		Preload("Members").
		Preload("Members.User").
		First(&list, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *listRepository) GetByOwner(ctx context.Context, ownerID string) ([]*models.List, error) {
	var lists []*models.List
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&lists).Error
	return lists, err
}

func (r *listRepository) Update(ctx context.Context, list *models.List) error {
	return r.db.WithContext(ctx).Save(list).Error
}

func (r *listRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&models.ListMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.List{}, "id = ?", id).Error
	})
}

func (r *listRepository) AddMember(ctx context.Context, listID, userID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ListMember{}).
		Where("list_id = ? AND user_id = ?", listID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&models.ListMember{
		ListID: listID,
		UserID: userID,
	}).Error
}

func (r *listRepository) RemoveMember(ctx context.Context, listID, userID string) error {
	return r.db.WithContext(ctx).
		Where("list_id = ? AND user_id = ?", listID, userID).
		Delete(&models.ListMember{}).Error
}

func (r *listRepository) MemberIDs(ctx context.Context, listID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.ListMember{}).
		Where("list_id = ?", listID).
		Pluck("user_id", &ids).Error
	return ids, err
}
