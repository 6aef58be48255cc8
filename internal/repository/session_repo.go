package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/challenge-api/internal/models"
)

// SessionRepository persists bearer-token sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetActiveByToken(ctx context.Context, token string) (models.Session, error)
	Deactivate(ctx context.Context, token string) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository instantiates a GORM-backed repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Omit("User").Create(session).Error
}

// GetActiveByToken returns the active session for token with its user preloaded.
func (r *sessionRepository) GetActiveByToken(ctx context.Context, token string) (models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("token = ? AND is_active = ?", token, true).
		First(&session).Error; err != nil {
		return models.Session{}, err
	}

	return session, nil
}

func (r *sessionRepository) Deactivate(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("token = ? AND is_active = ?", token, true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
