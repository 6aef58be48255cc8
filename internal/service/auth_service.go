package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/challenge-api/internal/dto"
	"github.com/noah-isme/challenge-api/internal/models"
	"github.com/noah-isme/challenge-api/internal/observability"
	"github.com/noah-isme/challenge-api/internal/repository"
)

// AuthService registers users and manages their bearer-token sessions.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (dto.SessionResponse, error)
	Logout(ctx context.Context, token string) error
}

// AuthOptions tunes password hashing and session lifetime.
type AuthOptions struct {
	SessionTTL time.Duration
	BcryptCost int
}

type authService struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	cache     SessionCache
	validator *validator.Validate
	opts      AuthOptions
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the authentication service. cache may be nil.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, cache SessionCache, validate *validator.Validate, opts AuthOptions, logger zerolog.Logger) AuthService {
	if cache == nil {
		cache = NewSessionCache(nil, 0, logger)
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	return &authService{
		users:     users,
		sessions:  sessions,
		cache:     cache,
		validator: validate,
		opts:      opts,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	payload.Email = strings.TrimSpace(payload.Email)
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Role = strings.ToUpper(strings.TrimSpace(payload.Role))
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	role, _ := models.ParseRole(payload.Role)

	existing, err := s.users.CountByEmail(ctx, payload.Email)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		s.logger.Info().Str("email", maskEmailAddress(payload.Email)).Msg("registration rejected: email taken")
		return dto.UserResponse{}, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), s.opts.BcryptCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         payload.Name,
		Role:         role,
		Email:        payload.Email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, ErrEmailAlreadyExists
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")

	return dto.NewUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Info().Str("email", maskEmailAddress(payload.Email)).Msg("login rejected: unknown email")
			return dto.LoginResponse{}, ErrUserNotFound
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		s.logger.Info().Uint("user_id", user.ID).Msg("login rejected: password mismatch")
		return dto.LoginResponse{}, ErrInvalidPassword
	}

	session := models.Session{
		Token:    uuid.NewString(),
		IsActive: true,
		UserID:   user.ID,
	}
	if s.opts.SessionTTL > 0 {
		expiresAt := s.now().Add(s.opts.SessionTTL)
		session.ExpiresAt = &expiresAt
	}

	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.LoginResponse{}, fmt.Errorf("create session: %w", err)
	}
	session.User = user

	response := dto.NewSessionResponse(session)
	s.cache.Set(ctx, response)
	observability.SessionsIssued().Inc()

	s.logger.Info().Uint("user_id", user.ID).Uint("session_id", session.ID).Msg("session issued")

	return dto.LoginResponse{
		User:    dto.NewUserResponse(user),
		Session: response,
	}, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (dto.SessionResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return dto.SessionResponse{}, ErrInvalidToken
	}

	if cached, ok := s.cache.Get(ctx, token); ok {
		if cached.IsActive && !s.expired(cached.ExpiresAt) {
			return cached, nil
		}
		s.cache.Delete(ctx, token)
		return dto.SessionResponse{}, ErrInvalidToken
	}

	session, err := s.sessions.GetActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SessionResponse{}, ErrInvalidToken
		}
		return dto.SessionResponse{}, err
	}

	if session.IsExpired(s.now()) {
		return dto.SessionResponse{}, ErrInvalidToken
	}

	response := dto.NewSessionResponse(session)
	s.cache.Set(ctx, response)

	return response, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}

	s.cache.Delete(ctx, token)

	if err := s.sessions.Deactivate(ctx, token); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	s.logger.Info().Msg("session deactivated")
	return nil
}

func (s *authService) expired(expiresAt *time.Time) bool {
	return expiresAt != nil && !s.now().Before(*expiresAt)
}

// maskEmailAddress keeps enough of an address to correlate log lines without exposing it.
func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	runes := []rune(local)
	if len(runes) <= 2 {
		return string(runes[0]) + "***@" + domain
	}
	return string(runes[0]) + "***" + string(runes[len(runes)-1]) + "@" + domain
}
