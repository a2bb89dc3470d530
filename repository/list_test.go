package repository

import (
	"context"
	"testing"

	"murmur/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMembership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	member := createTestUser(t, db, "member")

	list := &models.List{OwnerID: owner.ID, Name: "reading list"}
	require.NoError(t, repo.Create(ctx, list))

	require.NoError(t, repo.AddMember(ctx, list.ID, member.ID))
	// Adding the same member twice keeps a single row.
	require.NoError(t, repo.AddMember(ctx, list.ID, member.ID))

	ids, err := repo.MemberIDs(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{member.ID}, ids)

	require.NoError(t, repo.RemoveMember(ctx, list.ID, member.ID))
	ids, err = repo.MemberIDs(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListCRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewListRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")

	list := &models.List{OwnerID: owner.ID, Name: "original"}
	require.NoError(t, repo.Create(ctx, list))

	list.Name = "renamed"
	require.NoError(t, repo.Update(ctx, list))

	got, err := repo.GetByID(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	owned, err := repo.GetByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	require.NoError(t, repo.Delete(ctx, list.ID))
	_, err = repo.GetByID(ctx, list.ID)
	assert.Error(t, err)
}
