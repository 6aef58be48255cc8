package dto

import (
	"time"

	"github.com/noah-isme/challenge-api/internal/models"
)

// PaginationMeta describes pagination for list endpoints.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ActivityListRequest narrows the caller's activity trail. EntityID only applies together with
// EntityType.
type ActivityListRequest struct {
	Page       int        `query:"page" validate:"omitempty,gte=1"`
	PageSize   int        `query:"page_size" validate:"omitempty,gte=1,lte=100"`
	ActorID    uint       `query:"-" validate:"required"`
	Action     string     `query:"action" validate:"omitempty,max=64"`
	EntityType string     `query:"entity_type" validate:"omitempty,oneof=challenge student_challenge"`
	EntityID   uint       `query:"entity_id" validate:"excluded_without=EntityType"`
	Since      *time.Time `query:"-"`
}

// ActivityResponse is the serialized representation of an activity log entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a page of activity entries.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts a model into a DTO.
func NewActivityResponse(model models.ActivityLog) ActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range model.Metadata {
		metadata[key] = value
	}

	return ActivityResponse{
		ID:         model.ID,
		ActorID:    model.ActorID,
		ActorRole:  model.ActorRole,
		Action:     model.Action,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		Metadata:   metadata,
		CreatedAt:  model.CreatedAt,
	}
}
