package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-judge-api/internal/config"
	"github.com/noah-isme/gema-judge-api/internal/handler"
	"github.com/noah-isme/gema-judge-api/internal/middleware"
	"github.com/noah-isme/gema-judge-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	JudgeHandler             *handler.JudgeHandler
	ProblemSubmissionHandler *handler.ProblemSubmissionHandler
	HealthChecks             map[string]handler.Pinger
	JWTMiddleware            fiber.Handler
	// ExecuteLimiter throttles routes that reach the judge. Nil disables throttling.
	ExecuteLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	v2 := app.Group("/api/v2", jwtMiddleware)

	if deps.JudgeHandler != nil {
		deps.JudgeHandler.Register(v2.Group("/judge"), deps.ExecuteLimiter)
	}

	if deps.ProblemSubmissionHandler != nil {
		deps.ProblemSubmissionHandler.Register(v2.Group("/problems"), deps.ExecuteLimiter)

		mentor := v2.Group("/mentor", middleware.RequireRole("teacher", "admin"))
		deps.ProblemSubmissionHandler.RegisterMentor(mentor)
	}
}
