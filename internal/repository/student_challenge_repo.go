package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/challenge-api/internal/models"
)

// StudentChallengeFilter narrows assignment listings. Exactly one of StudentID or ReviewerID is
// normally set by callers.
type StudentChallengeFilter struct {
	StudentID  *uint
	ReviewerID *uint
	Status     models.ChallengeStatus
}

// StudentChallengeRepository defines persistence operations for challenge assignments.
type StudentChallengeRepository interface {
	List(ctx context.Context, filter StudentChallengeFilter) ([]models.StudentChallenge, error)
	GetByID(ctx context.Context, id uint) (models.StudentChallenge, error)
	Exists(ctx context.Context, challengeID, studentID uint) (bool, error)
	Create(ctx context.Context, item *models.StudentChallenge) error
	MarkSolved(ctx context.Context, id, studentID uint, solution string, at time.Time) (bool, error)
	MarkReviewed(ctx context.Context, id, reviewerID uint, grade float64, comment string, at time.Time) (bool, error)
	WithTx(tx *gorm.DB) StudentChallengeRepository
}

type studentChallengeRepository struct {
	db *gorm.DB
}

// NewStudentChallengeRepository instantiates a GORM-backed repository.
func NewStudentChallengeRepository(db *gorm.DB) StudentChallengeRepository {
	return &studentChallengeRepository{db: db}
}

func (r *studentChallengeRepository) WithTx(tx *gorm.DB) StudentChallengeRepository {
	return &studentChallengeRepository{db: tx}
}

// baseQuery joins the challenge, student and reviewer. The challenge is loaded unscoped so
// assignments of a soft-deleted challenge still show what was asked.
func (r *studentChallengeRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.StudentChallenge{}).
		Preload("Challenge", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Student").
		Preload("Reviewer")
}

func (r *studentChallengeRepository) List(ctx context.Context, filter StudentChallengeFilter) ([]models.StudentChallenge, error) {
	query := r.baseQuery(ctx)

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.ReviewerID != nil {
		query = query.Where("reviewer_id = ?", *filter.ReviewerID)
	}

	query = applyStatusFilter(query, filter.Status)

	var items []models.StudentChallenge
	if err := query.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

// applyStatusFilter is the single place translating a ChallengeStatus into SQL; both the
// reviewer and the student listing go through it.
func applyStatusFilter(query *gorm.DB, status models.ChallengeStatus) *gorm.DB {
	switch status {
	case models.ChallengeStatusUncomplete:
		return query.Where("is_done = ?", false)
	case models.ChallengeStatusCompleted:
		return query.Where("is_done = ? AND is_reviewed = ?", true, false)
	case models.ChallengeStatusReviewed:
		return query.Where("is_reviewed = ?", true)
	default:
		return query
	}
}

func (r *studentChallengeRepository) GetByID(ctx context.Context, id uint) (models.StudentChallenge, error) {
	var item models.StudentChallenge
	if err := r.baseQuery(ctx).First(&item, id).Error; err != nil {
		return models.StudentChallenge{}, err
	}

	return item, nil
}

func (r *studentChallengeRepository) Exists(ctx context.Context, challengeID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StudentChallenge{}).
		Where("challenge_id = ? AND student_id = ?", challengeID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *studentChallengeRepository) Create(ctx context.Context, item *models.StudentChallenge) error {
	return r.db.WithContext(ctx).Omit("Challenge", "Student", "Reviewer").Create(item).Error
}

// MarkSolved stores the solution only while the assignment is still open. It returns false when
// no open assignment with that id belongs to the student.
func (r *studentChallengeRepository) MarkSolved(ctx context.Context, id, studentID uint, solution string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StudentChallenge{}).
		Where("id = ? AND student_id = ? AND is_done = ?", id, studentID, false).
		Updates(map[string]interface{}{
			"solution":  solution,
			"is_done":   true,
			"solved_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// MarkReviewed grades a solved, not yet reviewed assignment owned by reviewerID.
func (r *studentChallengeRepository) MarkReviewed(ctx context.Context, id, reviewerID uint, grade float64, comment string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StudentChallenge{}).
		Where("id = ? AND reviewer_id = ? AND is_done = ? AND is_reviewed = ?", id, reviewerID, true, false).
		Updates(map[string]interface{}{
			"grade":       grade,
			"comment":     comment,
			"is_reviewed": true,
			"reviewed_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
