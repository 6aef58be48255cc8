package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/challenge-api/internal/dto"
	"github.com/noah-isme/challenge-api/internal/service"
	"github.com/noah-isme/challenge-api/internal/utils"
)

// ChallengeHandler wires challenge authoring and the assignment workflow.
type ChallengeHandler struct {
	service service.ChallengeService
	logger  zerolog.Logger
}

// NewChallengeHandler constructs the handler.
func NewChallengeHandler(service service.ChallengeService, logger zerolog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		service: service,
		logger:  logger.With().Str("component", "challenge_handler").Logger(),
	}
}

// Register attaches the challenge routes. The router must already require a bearer session;
// teacherOnly and studentOnly guard the role-specific routes.
func (h *ChallengeHandler) Register(router fiber.Router, teacherOnly, studentOnly fiber.Handler) {
	router.Get("", h.list)
	router.Post("", teacherOnly, h.create)

	router.Post("/assign-challenge", teacherOnly, h.assign)
	router.Get("/review-challenge", teacherOnly, h.listReview)
	router.Post("/review-challenge", teacherOnly, h.review)
	router.Get("/student-challenge", studentOnly, h.listStudent)
	router.Post("/student-challenge", studentOnly, h.solve)

	router.Get("/:id", h.get)
	router.Put("/:id", teacherOnly, h.update)
	router.Delete("/:id", teacherOnly, h.delete)
}

func (h *ChallengeHandler) list(c *fiber.Ctx) error {
	challenges, err := h.service.List(c.UserContext(), c.Query("filter"))
	if err != nil {
		return handleError(c, h.logger, err, "failed to list challenges")
	}

	return utils.SendSuccess(c, "list of challenge", challenges)
}

func (h *ChallengeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return handleError(c, h.logger, err, "failed to load challenge")
	}

	challenge, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.logger, err, "failed to load challenge")
	}

	return utils.SendSuccess(c, "get single challenge", challenge)
}

func (h *ChallengeHandler) create(c *fiber.Ctx) error {
	var payload dto.ChallengeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	challenge, err := h.service.Create(c.UserContext(), activityActorFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to create challenge")
	}

	return utils.SendCreated(c, "success create challenge", challenge)
}

func (h *ChallengeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return handleError(c, h.logger, err, "failed to update challenge")
	}

	var payload dto.ChallengeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	challenge, err := h.service.Update(c.UserContext(), activityActorFromContext(c), id, payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to update challenge")
	}

	return utils.SendSuccess(c, "success update challenge", challenge)
}

func (h *ChallengeHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return handleError(c, h.logger, err, "failed to delete challenge")
	}

	if err := h.service.Delete(c.UserContext(), activityActorFromContext(c), id); err != nil {
		return handleError(c, h.logger, err, "failed to delete challenge")
	}

	return utils.SendSuccess(c, "success delete challenge", fiber.Map{"id": id})
}

func (h *ChallengeHandler) assign(c *fiber.Ctx) error {
	var payload dto.AssignChallengeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.service.Assign(c.UserContext(), activityActorFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to assign challenge")
	}

	return utils.SendCreated(c, "success assign challenge", assignment)
}

func (h *ChallengeHandler) listReview(c *fiber.Ctx) error {
	items, err := h.service.ListForReviewer(c.UserContext(), userIDFromContext(c), c.Query("status"))
	if err != nil {
		return handleError(c, h.logger, err, "failed to list review challenges")
	}

	return utils.SendSuccess(c, "success get challenge", items)
}

func (h *ChallengeHandler) review(c *fiber.Ctx) error {
	var payload dto.ReviewChallengeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.service.Review(c.UserContext(), activityActorFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to review challenge")
	}

	return utils.SendSuccess(c, "success review challenge", assignment)
}

func (h *ChallengeHandler) listStudent(c *fiber.Ctx) error {
	items, err := h.service.ListForStudent(c.UserContext(), userIDFromContext(c), c.Query("status"))
	if err != nil {
		return handleError(c, h.logger, err, "failed to list student challenges")
	}

	return utils.SendSuccess(c, "success get challenge", items)
}

func (h *ChallengeHandler) solve(c *fiber.Ctx) error {
	var payload dto.SolveChallengeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.service.Solve(c.UserContext(), activityActorFromContext(c), payload)
	if err != nil {
		return handleError(c, h.logger, err, "failed to solve challenge")
	}

	return utils.SendSuccess(c, "success solve challenge", assignment)
}
