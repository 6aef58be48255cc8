package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/challenge-api/internal/middleware"
	"github.com/noah-isme/challenge-api/internal/service"
	"github.com/noah-isme/challenge-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, service.ErrInvalidIdentifier
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func activityActorFromContext(c *fiber.Ctx) service.ActivityActor {
	return service.ActivityActor{
		ID:   userIDFromContext(c),
		Role: userRoleFromContext(c),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// errorStatus maps service errors onto HTTP status codes. Unknown errors yield 0.
func errorStatus(err error) int {
	switch {
	case isValidationError(err),
		errors.Is(err, service.ErrInvalidIdentifier),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrMarkupNotAllowed):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrChallengeExists),
		errors.Is(err, service.ErrChallengeAlreadyAssigned),
		errors.Is(err, service.ErrChallengeAlreadySolved),
		errors.Is(err, service.ErrChallengeNotSolved),
		errors.Is(err, service.ErrChallengeAlreadyReviewed):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidToken):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, service.ErrStudentChallengeNotFound):
		return fiber.StatusNotFound
	default:
		return 0
	}
}

// handleError writes the envelope for err, logging anything that is not a known domain failure.
func handleError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	if status := errorStatus(err); status != 0 {
		return utils.SendError(c, status, err.Error())
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg(fallback)
	return utils.SendError(c, fiber.StatusInternalServerError, fallback)
}
