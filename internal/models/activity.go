package models

import (
	"time"

	"gorm.io/datatypes"
)

// Entity types written to the activity trail.
const (
	ActivityEntityChallenge        = "challenge"
	ActivityEntityStudentChallenge = "student_challenge"
)

// ActivityLog captures auditable events in the challenge workflow.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index:idx_activity_logs_actor_entity,priority:1" json:"actor_id"`
	ActorRole  string            `gorm:"size:32;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null;index:idx_activity_logs_actor_entity,priority:2" json:"entity_type"`
	EntityID   *uint             `gorm:"index:idx_activity_logs_actor_entity,priority:3" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `json:"created_at"`
}
