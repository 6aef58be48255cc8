package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Challenge is a teacher-authored task description. Deleting it only stamps DeletedAt so existing
// assignments keep pointing at it.
type Challenge struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	Description       string             `gorm:"type:text;not null;uniqueIndex:idx_challenges_active_description,where:deleted_at IS NULL" json:"description"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	DeletedAt         gorm.DeletedAt     `gorm:"index" json:"deleted_at"`
	StudentChallenges []StudentChallenge `json:"-"`
}

// StudentChallenge links one challenge to one student and the teacher reviewing the work.
type StudentChallenge struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ChallengeID uint       `gorm:"not null;uniqueIndex:idx_student_challenges_pair" json:"challenge_id"`
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_student_challenges_pair;index" json:"student_id"`
	ReviewerID  uint       `gorm:"not null;index" json:"reviewer_id"`
	Solution    string     `gorm:"type:text" json:"solution"`
	Grade       *float64   `json:"grade"`
	Comment     string     `gorm:"type:text" json:"comment"`
	IsDone      bool       `gorm:"not null;default:false" json:"is_done"`
	IsReviewed  bool       `gorm:"not null;default:false" json:"is_reviewed"`
	SolvedAt    *time.Time `json:"solved_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Challenge   Challenge  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"challenge"`
	Student     User       `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Reviewer    User       `gorm:"foreignKey:ReviewerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"reviewer"`
}

// ChallengeStatus is the derived progress of a StudentChallenge used for filtering.
type ChallengeStatus string

const (
	// ChallengeStatusAll disables status filtering.
	ChallengeStatusAll ChallengeStatus = "ALL"
	// ChallengeStatusUncomplete matches assignments the student has not solved yet.
	ChallengeStatusUncomplete ChallengeStatus = "UNCOMPLETE"
	// ChallengeStatusCompleted matches solved assignments still waiting for review.
	ChallengeStatusCompleted ChallengeStatus = "COMPLETED"
	// ChallengeStatusReviewed matches graded assignments.
	ChallengeStatusReviewed ChallengeStatus = "REVIEWED"
)

// ParseChallengeStatus converts a query value into a ChallengeStatus. Empty input means ALL.
func ParseChallengeStatus(value string) (ChallengeStatus, error) {
	normalized := ChallengeStatus(strings.ToUpper(strings.TrimSpace(value)))
	switch normalized {
	case "":
		return ChallengeStatusAll, nil
	case ChallengeStatusAll, ChallengeStatusUncomplete, ChallengeStatusCompleted, ChallengeStatusReviewed:
		return normalized, nil
	default:
		return "", fmt.Errorf("unknown challenge status %q", value)
	}
}

// Status derives the lifecycle state from the completion flags.
func (s StudentChallenge) Status() ChallengeStatus {
	switch {
	case s.IsReviewed:
		return ChallengeStatusReviewed
	case s.IsDone:
		return ChallengeStatusCompleted
	default:
		return ChallengeStatusUncomplete
	}
}

// Matches reports whether the assignment belongs to the requested status bucket.
func (s StudentChallenge) Matches(status ChallengeStatus) bool {
	if status == "" || status == ChallengeStatusAll {
		return true
	}
	return s.Status() == status
}
