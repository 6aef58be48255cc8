package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/challenge-api/internal/models"
)

// ChallengeRepository defines persistence operations for challenges. Soft-deleted rows are
// invisible to every method.
type ChallengeRepository interface {
	List(ctx context.Context, search string) ([]models.Challenge, error)
	GetByID(ctx context.Context, id uint) (models.Challenge, error)
	CountByDescription(ctx context.Context, description string, excludeID uint) (int64, error)
	Create(ctx context.Context, challenge *models.Challenge) error
	Update(ctx context.Context, challenge *models.Challenge) error
	Delete(ctx context.Context, id uint) error
	WithTx(tx *gorm.DB) ChallengeRepository
}

type challengeRepository struct {
	db *gorm.DB
}

// NewChallengeRepository instantiates a GORM-backed repository.
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) WithTx(tx *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: tx}
}

func (r *challengeRepository) List(ctx context.Context, search string) ([]models.Challenge, error) {
	query := r.db.WithContext(ctx).Model(&models.Challenge{})

	if term := strings.TrimSpace(search); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where("LOWER(description) LIKE ? ESCAPE '\\'", pattern)
	}

	var challenges []models.Challenge
	if err := query.Order("created_at ASC").Order("id ASC").Find(&challenges).Error; err != nil {
		return nil, err
	}

	return challenges, nil
}

func (r *challengeRepository) GetByID(ctx context.Context, id uint) (models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return models.Challenge{}, err
	}

	return challenge, nil
}

// CountByDescription counts live challenges with exactly this description, ignoring excludeID when non-zero.
func (r *challengeRepository) CountByDescription(ctx context.Context, description string, excludeID uint) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Challenge{}).Where("description = ?", description)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Omit("StudentChallenges").Create(challenge).Error
}

func (r *challengeRepository) Update(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Omit("StudentChallenges").Save(challenge).Error
}

func (r *challengeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Challenge{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
