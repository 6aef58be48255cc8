package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/challenge-api/internal/models"
)

func TestSessionRepositoryLookupAndDeactivate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	user := createUser(t, db, "Alice", models.RoleTeacher)
	session := models.Session{Token: "token-1", IsActive: true, UserID: user.ID}
	require.NoError(t, repo.Create(ctx, &session))

	found, err := repo.GetActiveByToken(ctx, "token-1")
	require.NoError(t, err)
	require.Equal(t, session.ID, found.ID)
	require.Equal(t, "Alice", found.User.Name)
	require.Equal(t, models.RoleTeacher, found.User.Role)

	_, err = repo.GetActiveByToken(ctx, "unknown")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.Deactivate(ctx, "token-1"))

	_, err = repo.GetActiveByToken(ctx, "token-1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.ErrorIs(t, repo.Deactivate(ctx, "token-1"), gorm.ErrRecordNotFound)
}

func TestUserRepositoryNormalisesEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := models.User{Name: "Bob", Role: models.RoleStudent, Email: " Bob@Example.com ", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, &user))

	count, err := repo.CountByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	found, err := repo.GetByEmail(ctx, "BOB@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	err = repo.Create(ctx, &models.User{Name: "Bobby", Role: models.RoleStudent, Email: "bob@example.com", PasswordHash: "hash"})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
