package repository

import (
	"testing"
	"time"

	"murmur/database"
	"murmur/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestPost inserts a post at a fixed offset in the past so that keyset
// ordering is deterministic.
func createTestPost(t *testing.T, db *gorm.DB, id, userID, text string, age time.Duration) *models.Post {
	t.Helper()
	post := &models.Post{
		ID:        id,
		Text:      text,
		UserID:    userID,
		CreatedAt: time.Now().Add(-age),
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
