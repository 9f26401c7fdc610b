package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-judge-api/internal/middleware"
)

const testSecret = "judge-secret"

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedApp(seen *uint) *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.JWTProtected(testSecret), middleware.WithUser(func(c *fiber.Ctx, userID uint) error {
		*seen = userID
		return c.SendStatus(fiber.StatusNoContent)
	}))
	return app
}

func perform(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedStoresSubject(t *testing.T) {
	var seen uint
	app := protectedApp(&seen)

	token := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "42", "role": "Student", "exp": time.Now().Add(time.Hour).Unix()})
	resp := perform(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, uint(42), seen)

	token = signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": float64(7)})
	resp = perform(t, app, "bearer "+token)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, uint(7), seen)
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	var seen uint
	app := protectedApp(&seen)

	expired := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "exp": time.Now().Add(-time.Minute).Unix()})
	noSubject := signToken(t, jwt.SigningMethodHS256, jwt.MapClaims{"role": "student"})

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer not-a-jwt", "Bearer " + expired, "Bearer " + noSubject} {
		resp := perform(t, app, header)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, header)
	}
	require.Zero(t, seen)
}

func TestWithUserRequiresAuthenticatedUser(t *testing.T) {
	app := fiber.New()
	app.Get("/", middleware.WithUser(func(c *fiber.Ctx, userID uint) error {
		return c.SendStatus(fiber.StatusOK)
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
