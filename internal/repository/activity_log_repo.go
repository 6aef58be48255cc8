package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/challenge-api/internal/models"
)

// ErrActivityActorRequired is returned when a trail query is not pinned to one actor.
var ErrActivityActorRequired = errors.New("activity query requires an actor")

// ActivityLogFilter selects one actor's trail, optionally narrowed to a challenge or an
// assignment and to entries newer than Since.
type ActivityLogFilter struct {
	ActorID    uint
	Action     string
	EntityType string
	EntityID   *uint
	Since      *time.Time
	Page       int
	PageSize   int
}

// ActivityLogRepository persists the workflow audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListByActor(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByActor returns the newest entries first. Ties on created_at fall back to insertion order
// because one workflow step can log several entries within the same clock tick.
func (r *activityLogRepository) ListByActor(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	if filter.ActorID == 0 {
		return nil, 0, ErrActivityActorRequired
	}

	query := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Where("actor_id = ?", filter.ActorID)

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
		if filter.EntityID != nil {
			query = query.Where("entity_id = ?", *filter.EntityID)
		}
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := max(filter.Page, 1)
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
