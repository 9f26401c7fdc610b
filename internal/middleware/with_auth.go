package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-judge-api/internal/utils"
)

// UserHandler is a handler that runs on behalf of an authenticated user.
type UserHandler func(c *fiber.Ctx, userID uint) error

// WithUser resolves the authenticated user id set by JWTProtected and rejects anonymous calls.
func WithUser(handler UserHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		return handler(c, userID)
	}
}

// UserID returns the authenticated user id stored on the request.
func UserID(c *fiber.Ctx) (uint, bool) {
	switch id := c.Locals("user_id").(type) {
	case uint:
		return id, id > 0
	case int:
		if id <= 0 {
			return 0, false
		}
		return uint(id), true
	default:
		return 0, false
	}
}
