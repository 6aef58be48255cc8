package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/challenge-api/internal/models"
)

func TestChallengeRepositoryListHidesSoftDeletedAndFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	reverse := models.Challenge{Description: "Reverse a string"}
	sum := models.Challenge{Description: "Sum of an ARRAY"}
	coverage := models.Challenge{Description: "Reach 100% coverage"}
	for _, challenge := range []*models.Challenge{&reverse, &sum, &coverage} {
		require.NoError(t, repo.Create(ctx, challenge))
	}

	require.NoError(t, repo.Delete(ctx, reverse.ID))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, challenge := range all {
		require.NotEqual(t, reverse.ID, challenge.ID)
	}

	filtered, err := repo.List(ctx, "array")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, sum.ID, filtered[0].ID)

	wildcard, err := repo.List(ctx, "%")
	require.NoError(t, err)
	require.Len(t, wildcard, 1, "percent sign must be matched literally")
	require.Equal(t, coverage.ID, wildcard[0].ID)

	deleted, err := repo.List(ctx, "reverse")
	require.NoError(t, err)
	require.Empty(t, deleted)

	_, err = repo.GetByID(ctx, reverse.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var raw models.Challenge
	require.NoError(t, db.Unscoped().First(&raw, reverse.ID).Error)
	require.True(t, raw.DeletedAt.Valid)
}

func TestChallengeRepositoryDescriptionUniqueAmongLiveRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	first := models.Challenge{Description: "FizzBuzz"}
	require.NoError(t, repo.Create(ctx, &first))

	count, err := repo.CountByDescription(ctx, "FizzBuzz", 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, err = repo.CountByDescription(ctx, "FizzBuzz", first.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	err = repo.Create(ctx, &models.Challenge{Description: "FizzBuzz"})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	require.NoError(t, repo.Delete(ctx, first.ID))

	count, err = repo.CountByDescription(ctx, "FizzBuzz", 0)
	require.NoError(t, err)
	require.Zero(t, count)

	again := models.Challenge{Description: "FizzBuzz"}
	require.NoError(t, repo.Create(ctx, &again))
	require.NotEqual(t, first.ID, again.ID)
}

func TestChallengeRepositoryDeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepository(db)

	err := repo.Delete(context.Background(), 999)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
