package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/challenge-api/internal/utils"
)

const forbiddenMessage = "insufficient permissions"

// RequireRole ensures that the authenticated user possesses one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	return RequireRoleWithMessage(forbiddenMessage, roles...)
}

// RequireRoleWithMessage behaves like RequireRole but answers with a custom 403 message.
func RequireRoleWithMessage(message string, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToUpper(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}
	if strings.TrimSpace(message) == "" {
		message = forbiddenMessage
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, message)
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToUpper(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToUpper(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToUpper(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
