package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-judge-api/internal/dto"
	"github.com/noah-isme/gema-judge-api/internal/middleware"
	"github.com/noah-isme/gema-judge-api/internal/service"
	"github.com/noah-isme/gema-judge-api/internal/utils"
)

// ProblemSubmissionHandler serves submission history, grading and the accepted tab for a problem.
type ProblemSubmissionHandler struct {
	submissions service.SubmissionService
	evaluation  service.EvaluationService
	logger      zerolog.Logger
}

// NewProblemSubmissionHandler constructs the handler.
func NewProblemSubmissionHandler(submissions service.SubmissionService, evaluation service.EvaluationService, logger zerolog.Logger) *ProblemSubmissionHandler {
	return &ProblemSubmissionHandler{
		submissions: submissions,
		evaluation:  evaluation,
		logger:      logger.With().Str("component", "problem_submission_handler").Logger(),
	}
}

// Register wires the learner facing endpoints. limiter guards the judge bound evaluate route.
func (h *ProblemSubmissionHandler) Register(router fiber.Router, limiter fiber.Handler) {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Post("/:problemID/submissions", middleware.WithUser(h.create))
	router.Get("/:problemID/submissions", middleware.WithUser(h.list))
	router.Post("/:problemID/evaluate", limiter, middleware.WithUser(h.evaluate))
	router.Get("/:problemID/accepted", middleware.WithUser(h.accepted))
	router.Post("/:problemID/accepted/hide", middleware.WithUser(h.hideAccepted))
	router.Put("/:problemID/settings/language", middleware.WithUser(h.updateLanguage))
}

// RegisterMentor wires read-only review routes for mentors.
func (h *ProblemSubmissionHandler) RegisterMentor(router fiber.Router) {
	router.Get("/problems/:problemID/users/:userID/submissions", h.listForUser)
}

func (h *ProblemSubmissionHandler) create(c *fiber.Ctx, userID uint) error {
	problemID, err := parseUintParam(c, "problemID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.submissions.Create(c.UserContext(), userID, problemID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission recorded", response)
}

func (h *ProblemSubmissionHandler) list(c *fiber.Ctx, userID uint) error {
	return h.sendHistory(c, userID)
}

func (h *ProblemSubmissionHandler) listForUser(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "userID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return h.sendHistory(c, userID)
}

func (h *ProblemSubmissionHandler) sendHistory(c *fiber.Ctx, userID uint) error {
	problemID, err := parseUintParam(c, "problemID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "limit must be a positive number", fiber.Map{"field": "limit"})
	}

	history, err := h.submissions.List(c.UserContext(), userID, problemID, limit)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.OK(c, history, "submissions retrieved", fiber.Map{"count": len(history)})
}

func (h *ProblemSubmissionHandler) evaluate(c *fiber.Ctx, userID uint) error {
	problemID, err := parseUintParam(c, "problemID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.evaluation.Evaluate(c.UserContext(), userID, problemID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	message := "submission evaluated"
	if response.FailedExecution != nil {
		message = "program did not run successfully"
	}
	return utils.SendSuccess(c, message, response)
}

func (h *ProblemSubmissionHandler) accepted(c *fiber.Ctx, userID uint) error {
	problemID, err := parseUintParam(c, "problemID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.submissions.Accepted(c.UserContext(), userID, problemID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "accepted submission retrieved", response)
}

func (h *ProblemSubmissionHandler) hideAccepted(c *fiber.Ctx, userID uint) error {
	problemID, err := parseUintParam(c, "problemID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.submissions.HideAccepted(c.UserContext(), userID, problemID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "accepted tab hidden", response)
}

func (h *ProblemSubmissionHandler) updateLanguage(c *fiber.Ctx, userID uint) error {
	problemID, err := parseUintParam(c, "problemID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.LanguageSettingsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	language, err := h.submissions.UpdateLanguage(c.UserContext(), userID, problemID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "language saved", dto.LanguageSettingsRequest{Language: language})
}
