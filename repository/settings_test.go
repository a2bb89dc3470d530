package repository

import (
	"context"
	"testing"

	"murmur/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSettingsPutReplacesWhole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "settingsuser")

	got, err := repo.Get(ctx, user.ID, models.SettingKeyAppearance)
	require.NoError(t, err)
	assert.Nil(t, got, "unset key returns nothing")

	_, err = repo.Put(ctx, user.ID, models.SettingKeyAppearance,
		datatypes.JSON(`{"theme":"dark","fontScale":1.2}`))
	require.NoError(t, err)

	// A second put replaces the blob entirely; fields are never merged.
	_, err = repo.Put(ctx, user.ID, models.SettingKeyAppearance,
		datatypes.JSON(`{"theme":"light"}`))
	require.NoError(t, err)

	got, err = repo.Get(ctx, user.ID, models.SettingKeyAppearance)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `{"theme":"light"}`, string(got.Value))

	var count int64
	db.Model(&models.Setting{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSettingsIsolatedPerUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	a := createTestUser(t, db, "usera")
	b := createTestUser(t, db, "userb")

	_, err := repo.Put(ctx, a.ID, models.SettingKeyAppearance, datatypes.JSON(`{"theme":"dark"}`))
	require.NoError(t, err)

	got, err := repo.Get(ctx, b.ID, models.SettingKeyAppearance)
	require.NoError(t, err)
	assert.Nil(t, got)
}
