package models

import (
	"strings"
	"time"
)

// Role identifies what a user is allowed to do on the platform.
type Role string

const (
	// RoleTeacher authors challenges and reviews solutions.
	RoleTeacher Role = "TEACHER"
	// RoleStudent solves the challenges assigned to them.
	RoleStudent Role = "STUDENT"
)

// ParseRole normalises a raw role value, returning false when it is not recognised.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleTeacher:
		return RoleTeacher, true
	case RoleStudent:
		return RoleStudent, true
	default:
		return "", false
	}
}

// User is a registered account. The password hash never leaves the service layer.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Role         Role      `gorm:"size:16;not null;index" json:"role"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Sessions     []Session `json:"-"`
}

// Session is a server-issued bearer token bound to a user.
type Session struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Token     string     `gorm:"size:64;uniqueIndex;not null" json:"token"`
	IsActive  bool       `gorm:"not null;default:true;index" json:"is_active"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	User      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}

// IsExpired returns true when the session carries an expiry that has already passed.
func (s Session) IsExpired(reference time.Time) bool {
	return s.ExpiresAt != nil && !reference.Before(*s.ExpiresAt)
}
