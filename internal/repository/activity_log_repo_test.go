package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/challenge-api/internal/models"
)

func TestActivityLogRepositoryScopesToActorAndEntity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	challengeID := uint(7)
	firstAssignment := uint(11)
	secondAssignment := uint(12)

	entries := []models.ActivityLog{
		{ActorID: 1, ActorRole: "teacher", Action: "challenge.created", EntityType: models.ActivityEntityChallenge, EntityID: &challengeID, CreatedAt: base},
		{ActorID: 1, ActorRole: "teacher", Action: "challenge.assigned", EntityType: models.ActivityEntityStudentChallenge, EntityID: &firstAssignment, CreatedAt: base.Add(time.Minute)},
		{ActorID: 1, ActorRole: "teacher", Action: "challenge.assigned", EntityType: models.ActivityEntityStudentChallenge, EntityID: &secondAssignment, CreatedAt: base.Add(2 * time.Minute)},
		{ActorID: 1, ActorRole: "teacher", Action: "challenge.reviewed", EntityType: models.ActivityEntityStudentChallenge, EntityID: &firstAssignment, CreatedAt: base.Add(time.Hour)},
		{ActorID: 2, ActorRole: "student", Action: "challenge.solved", EntityType: models.ActivityEntityStudentChallenge, EntityID: &firstAssignment, CreatedAt: base.Add(30 * time.Minute)},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}

	all, total, err := repo.ListByActor(ctx, ActivityLogFilter{ActorID: 1})
	require.NoError(t, err)
	require.Equal(t, int64(4), total)
	require.Equal(t, "challenge.reviewed", all[0].Action)
	for _, entry := range all {
		require.Equal(t, uint(1), entry.ActorID)
	}

	assignments, total, err := repo.ListByActor(ctx, ActivityLogFilter{ActorID: 1, EntityType: models.ActivityEntityStudentChallenge})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, assignments, 3)

	history, _, err := repo.ListByActor(ctx, ActivityLogFilter{ActorID: 1, EntityType: models.ActivityEntityStudentChallenge, EntityID: &firstAssignment})
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "challenge.reviewed", history[0].Action)
	require.Equal(t, "challenge.assigned", history[1].Action)

	since := base.Add(90 * time.Second)
	recent, total, err := repo.ListByActor(ctx, ActivityLogFilter{ActorID: 1, Since: &since})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, recent, 2)

	page, total, err := repo.ListByActor(ctx, ActivityLogFilter{ActorID: 1, Action: "challenge.assigned", Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, page, 1)
	require.Equal(t, firstAssignment, *page[0].EntityID)

	_, _, err = repo.ListByActor(ctx, ActivityLogFilter{EntityType: models.ActivityEntityChallenge})
	require.ErrorIs(t, err, ErrActivityActorRequired)
}
