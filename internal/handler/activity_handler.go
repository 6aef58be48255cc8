package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/challenge-api/internal/dto"
	"github.com/noah-isme/challenge-api/internal/service"
	"github.com/noah-isme/challenge-api/internal/utils"
)

// ActivityHandler exposes the caller's own activity trail.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the router group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize > 100 {
		pageSize = 100
	}

	entityID, err := parseQueryInt(c, "entity_id")
	if err != nil || entityID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid entity id")
	}

	req := dto.ActivityListRequest{
		Page:       page,
		PageSize:   pageSize,
		ActorID:    userIDFromContext(c),
		Action:     c.Query("action"),
		EntityType: strings.ToLower(strings.TrimSpace(c.Query("entity_type"))),
		EntityID:   uint(entityID),
	}

	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid since, expected RFC3339")
		}
		req.Since = &since
	}

	response, err := h.service.List(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.logger, err, "failed to list activity logs")
	}

	return utils.SendSuccess(c, "activity logs", response)
}
