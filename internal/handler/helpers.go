package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-judge-api/internal/middleware"
	"github.com/noah-isme/gema-judge-api/internal/service"
	"github.com/noah-isme/gema-judge-api/internal/utils"
	"github.com/noah-isme/gema-judge-api/pkg/judge"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
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

// sendServiceError maps pipeline errors onto user facing responses. Upstream bodies are never echoed.
func sendServiceError(c *fiber.Ctx, base zerolog.Logger, err error) error {
	logger := requestLogger(base, c)

	if field, message, ok := utils.ValidationMessage(err); ok {
		return utils.Fail(c, fiber.StatusBadRequest, message, fiber.Map{"field": field})
	}

	switch {
	case errors.Is(err, judge.ErrInvalidRequest), errors.Is(err, service.ErrInvalidSubmission):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnsupportedLanguage):
		return utils.SendError(c, fiber.StatusBadRequest, "language not supported")
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem not found")
	case errors.Is(err, service.ErrNoTestCases):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "problem has no test cases yet")
	case errors.Is(err, judge.ErrRateLimited):
		logger.Warn().Err(err).Msg("judge rate limited the request")
		return utils.SendError(c, fiber.StatusTooManyRequests, "judge is busy, try again shortly")
	case errors.Is(err, judge.ErrTimeout):
		logger.Warn().Err(err).Msg("judge execution did not finish in time")
		return utils.SendError(c, fiber.StatusGatewayTimeout, "execution did not complete, try again")
	case errors.Is(err, judge.ErrUnauthorized):
		logger.Error().Err(err).Msg("judge credentials rejected")
		return utils.SendError(c, fiber.StatusBadGateway, "code execution is temporarily unavailable")
	case errors.Is(err, judge.ErrUpstreamServer), errors.Is(err, judge.ErrUpstream), errors.Is(err, judge.ErrInvalidResponse):
		logger.Error().Err(err).Msg("judge request failed")
		return utils.SendError(c, fiber.StatusBadGateway, "code execution failed, try again later")
	case errors.Is(err, service.ErrPersistence):
		logger.Error().Err(err).Msg("submission could not be stored")
		return utils.SendError(c, fiber.StatusInternalServerError, "could not save your submission")
	default:
		logger.Error().Err(err).Msg("judge pipeline request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
