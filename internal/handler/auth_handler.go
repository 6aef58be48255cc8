package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/challenge-api/internal/dto"
	"github.com/noah-isme/challenge-api/internal/middleware"
	"github.com/noah-isme/challenge-api/internal/service"
	"github.com/noah-isme/challenge-api/internal/utils"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the auth routes. limiter guards the anonymous routes against credential
// stuffing; bearer protects the session routes.
func (h *AuthHandler) Register(router fiber.Router, limiter, bearer fiber.Handler) {
	router.Post("/register", limiter, h.register)
	router.Post("/login", limiter, h.login)
	router.Get("/profile", bearer, h.profile)
	router.Post("/logout", bearer, h.logout)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to register user")
	}

	return utils.SendCreated(c, "register success", user)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to login")
	}

	return utils.SendSuccess(c, "success login", response)
}

func (h *AuthHandler) profile(c *fiber.Ctx) error {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusForbidden, service.ErrInvalidToken.Error())
	}

	return utils.SendSuccess(c, "profile", session)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	if err := h.service.Logout(c.UserContext(), token); err != nil {
		return handleError(c, h.logger, err, "failed to logout")
	}

	return utils.SendSuccess(c, "logged out", nil)
}
