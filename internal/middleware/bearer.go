package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/challenge-api/internal/dto"
	"github.com/noah-isme/challenge-api/internal/service"
	"github.com/noah-isme/challenge-api/internal/utils"
)

// TokenValidator resolves a bearer token into its session.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (dto.SessionResponse, error)
}

const bearerScheme = "bearer "

// BearerAuth authenticates requests carrying an `Authorization: Bearer <token>` header.
func BearerAuth(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if len(authorization) <= len(bearerScheme) || !strings.EqualFold(authorization[:len(bearerScheme)], bearerScheme) {
			return utils.SendError(c, fiber.StatusForbidden, service.ErrInvalidToken.Error())
		}

		token := strings.TrimSpace(authorization[len(bearerScheme):])
		if token == "" {
			return utils.SendError(c, fiber.StatusForbidden, service.ErrInvalidToken.Error())
		}

		session, err := validator.ValidateToken(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				return utils.SendError(c, fiber.StatusForbidden, service.ErrInvalidToken.Error())
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to validate token")
		}

		c.Locals("session", session)
		c.Locals("token", token)
		c.Locals("user_id", session.User.ID)
		c.Locals("user_role", string(session.User.Role))

		return c.Next()
	}
}

// SessionFromContext returns the session stored by BearerAuth.
func SessionFromContext(c *fiber.Ctx) (dto.SessionResponse, bool) {
	session, ok := c.Locals("session").(dto.SessionResponse)
	return session, ok
}
