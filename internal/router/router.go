package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/challenge-api/internal/config"
	"github.com/noah-isme/challenge-api/internal/handler"
	"github.com/noah-isme/challenge-api/internal/middleware"
	"github.com/noah-isme/challenge-api/internal/models"
	"github.com/noah-isme/challenge-api/internal/observability"
)

const (
	teacherOnlyMessage = "You're not authorized to do this action."
	studentOnlyMessage = "Only student can access this information"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	ChallengeHandler *handler.ChallengeHandler
	ActivityHandler  *handler.ActivityHandler
	TokenValidator   middleware.TokenValidator
	HealthChecks     map[string]handler.Pinger
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	app.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))
	app.Get("/metrics", observability.MetricsHandler())

	if deps.TokenValidator == nil {
		return
	}

	bearer := middleware.BearerAuth(deps.TokenValidator)
	teacherOnly := middleware.RequireRoleWithMessage(teacherOnlyMessage, string(models.RoleTeacher))
	studentOnly := middleware.RequireRoleWithMessage(studentOnlyMessage, string(models.RoleStudent))

	if deps.AuthHandler != nil {
		window := cfg.AuthRateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		limiter := middleware.RateLimit("auth", cfg.AuthRateLimitMax, window)
		deps.AuthHandler.Register(app.Group("/auth"), limiter, bearer)
	}

	if deps.ChallengeHandler != nil {
		challenges := app.Group("/challenge", bearer)
		deps.ChallengeHandler.Register(challenges, teacherOnly, studentOnly)
	}

	if deps.ActivityHandler != nil {
		activity := app.Group("/activity", bearer, teacherOnly)
		deps.ActivityHandler.Register(activity)
	}
}
