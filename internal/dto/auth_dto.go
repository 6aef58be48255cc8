package dto

import (
	"time"

	"github.com/noah-isme/challenge-api/internal/models"
)

// RegisterRequest is the payload accepted by the registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"required,oneof=TEACHER STUDENT"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
}

// LoginRequest carries the credentials exchanged for a session token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user; it never includes the password hash.
type UserResponse struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	Email     string      `json:"email,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// SessionResponse describes an issued session together with its owner.
type SessionResponse struct {
	ID        uint         `json:"id"`
	Token     string       `json:"token"`
	IsActive  bool         `json:"is_active"`
	ExpiresAt *time.Time   `json:"expires_at"`
	CreatedAt time.Time    `json:"created_at"`
	User      UserResponse `json:"user"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	User    UserResponse    `json:"user"`
	Session SessionResponse `json:"session"`
}

// UserLite summarises a user inside other resources.
type UserLite struct {
	ID   uint        `json:"id"`
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:        model.ID,
		Name:      model.Name,
		Role:      model.Role,
		Email:     model.Email,
		CreatedAt: model.CreatedAt,
	}
}

// NewSessionResponse converts a session model, including its preloaded user, into a DTO.
func NewSessionResponse(model models.Session) SessionResponse {
	return SessionResponse{
		ID:        model.ID,
		Token:     model.Token,
		IsActive:  model.IsActive,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		User:      NewUserResponse(model.User),
	}
}

func newUserLite(model models.User) *UserLite {
	if model.ID == 0 {
		return nil
	}
	return &UserLite{ID: model.ID, Name: model.Name, Role: model.Role}
}
