package dto

import (
	"time"

	"github.com/noah-isme/challenge-api/internal/models"
)

// ChallengeRequest is used both to create a challenge and to change its description.
type ChallengeRequest struct {
	Description string `json:"description" validate:"required,min=1"`
}

// AssignChallengeRequest assigns an existing challenge to a student.
type AssignChallengeRequest struct {
	ChallengeID uint `json:"challenge_id" validate:"required,gt=0"`
	StudentID   uint `json:"student_id" validate:"required,gt=0"`
}

// SolveChallengeRequest carries a student's solution for an assignment.
type SolveChallengeRequest struct {
	StudentChallengeID uint   `json:"student_challenge_id" validate:"required,gt=0"`
	Solution           string `json:"solution" validate:"required"`
}

// ReviewChallengeRequest carries the teacher's grade and comment for a solved assignment.
type ReviewChallengeRequest struct {
	StudentChallengeID uint     `json:"student_challenge_id" validate:"required,gt=0"`
	Grade              *float64 `json:"grade" validate:"required,gte=0,lte=100"`
	Comment            string   `json:"comment" validate:"required"`
}

// ChallengeResponse is the serialized representation of a challenge.
type ChallengeResponse struct {
	ID          uint      `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChallengeLite summarises a challenge inside assignment responses.
type ChallengeLite struct {
	ID          uint   `json:"id"`
	Description string `json:"description"`
	Deleted     bool   `json:"deleted"`
}

// StudentChallengeResponse is the serialized representation of an assignment.
type StudentChallengeResponse struct {
	ID          uint                   `json:"id"`
	ChallengeID uint                   `json:"challenge_id"`
	StudentID   uint                   `json:"student_id"`
	ReviewerID  uint                   `json:"reviewer_id"`
	Status      models.ChallengeStatus `json:"status"`
	Solution    string                 `json:"solution"`
	Grade       *float64               `json:"grade"`
	Comment     string                 `json:"comment"`
	IsDone      bool                   `json:"is_done"`
	IsReviewed  bool                   `json:"is_reviewed"`
	SolvedAt    *time.Time             `json:"solved_at"`
	ReviewedAt  *time.Time             `json:"reviewed_at"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Challenge   *ChallengeLite         `json:"challenge,omitempty"`
	Student     *UserLite              `json:"student,omitempty"`
	Reviewer    *UserLite              `json:"reviewer,omitempty"`
}

// NewChallengeResponse converts a model into a DTO.
func NewChallengeResponse(model models.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:          model.ID,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewChallengeResponseSlice converts a slice of models into DTOs.
func NewChallengeResponseSlice(challenges []models.Challenge) []ChallengeResponse {
	responses := make([]ChallengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		responses = append(responses, NewChallengeResponse(challenge))
	}

	return responses
}

// NewStudentChallengeResponse converts an assignment model, with whatever associations were preloaded, into a DTO.
func NewStudentChallengeResponse(model models.StudentChallenge) StudentChallengeResponse {
	response := StudentChallengeResponse{
		ID:          model.ID,
		ChallengeID: model.ChallengeID,
		StudentID:   model.StudentID,
		ReviewerID:  model.ReviewerID,
		Status:      model.Status(),
		Solution:    model.Solution,
		Grade:       model.Grade,
		Comment:     model.Comment,
		IsDone:      model.IsDone,
		IsReviewed:  model.IsReviewed,
		SolvedAt:    model.SolvedAt,
		ReviewedAt:  model.ReviewedAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
		Student:     newUserLite(model.Student),
		Reviewer:    newUserLite(model.Reviewer),
	}

	if model.Challenge.ID != 0 {
		response.Challenge = &ChallengeLite{
			ID:          model.Challenge.ID,
			Description: model.Challenge.Description,
			Deleted:     model.Challenge.DeletedAt.Valid,
		}
	}

	return response
}

// NewStudentChallengeResponseSlice converts a slice of assignments into DTOs.
func NewStudentChallengeResponseSlice(items []models.StudentChallenge) []StudentChallengeResponse {
	responses := make([]StudentChallengeResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewStudentChallengeResponse(item))
	}

	return responses
}
