package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-judge-api/internal/dto"
	"github.com/noah-isme/gema-judge-api/internal/service"
	"github.com/noah-isme/gema-judge-api/internal/utils"
)

// JudgeHandler exposes the raw execution proxy used by the editor's run button.
type JudgeHandler struct {
	evaluation service.EvaluationService
	normalizer service.LanguageNormalizer
	logger     zerolog.Logger
}

// NewJudgeHandler constructs the handler.
func NewJudgeHandler(evaluation service.EvaluationService, normalizer service.LanguageNormalizer, logger zerolog.Logger) *JudgeHandler {
	return &JudgeHandler{
		evaluation: evaluation,
		normalizer: normalizer,
		logger:     logger.With().Str("component", "judge_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group. limiter guards judge bound routes.
func (h *JudgeHandler) Register(router fiber.Router, limiter fiber.Handler) {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Post("/execute", limiter, h.execute)
	router.Get("/languages/normalize", h.normalize)
}

func (h *JudgeHandler) execute(c *fiber.Ctx) error {
	var payload dto.ExecuteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.evaluation.Run(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "execution finished", response)
}

func (h *JudgeHandler) normalize(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "token is required", fiber.Map{"field": "token"})
	}

	ctx := c.UserContext()
	response := dto.LanguageResponse{Token: token, Language: h.normalizer.Normalize(ctx, token)}
	if id, ok := h.normalizer.LanguageID(ctx, token); ok {
		response.LanguageID = &id
	}

	return utils.SendSuccess(c, "language resolved", response)
}
