package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"transbus-fleetdesk/internal/config"
	"transbus-fleetdesk/internal/core/domain"
	"transbus-fleetdesk/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenHours: 1,
			RefreshTokenDays: 7,
		},
		Auth: config.AuthConfig{
			ProtectedPagePrefixes: []string{"/dashboard", "/admin"},
			LoginPath:             "/login",
		},
	}
}

func accessToken(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(1, "user@example.com", role, cfg.JWT.Secret, cfg.JWT.AccessTokenHours)
	require.NoError(t, err)
	return token
}

func protectedApp(cfg *config.Config, extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{AuthMiddleware(cfg)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("userID"),
			"role":    c.Locals("role"),
		})
	})
	app.Get("/api/secure", handlers...)
	return app
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	app := protectedApp(testConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/secure", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	app := protectedApp(testConfig())

	req := httptest.NewRequest("GET", "/api/secure", nil)
	req.Header.Set("Cookie", TokenCookieName+"=garbage.token.value")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	cfg := testConfig()
	app := protectedApp(cfg)

	forged, err := jwt.GenerateAccessToken(1, "user@example.com", "ADMIN", "attacker-secret", 1)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/secure", nil)
	req.Header.Set("Cookie", TokenCookieName+"="+forged)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	cfg := testConfig()
	app := protectedApp(cfg)

	expired, err := jwt.GenerateAccessToken(1, "user@example.com", "ADMIN", cfg.JWT.Secret, -1)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/secure", nil)
	req.Header.Set("Cookie", TokenCookieName+"="+expired)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareValidCookie(t *testing.T) {
	cfg := testConfig()
	app := protectedApp(cfg)

	req := httptest.NewRequest("GET", "/api/secure", nil)
	req.Header.Set("Cookie", TokenCookieName+"="+accessToken(t, cfg, "MANAGER"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(1), body["user_id"])
	assert.Equal(t, "MANAGER", body["role"])
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	cfg := testConfig()
	app := protectedApp(cfg)

	req := httptest.NewRequest("GET", "/api/secure", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, cfg, "ADMIN"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRoleMiddlewareDeniedRoleGetsGenericForbidden(t *testing.T) {
	cfg := testConfig()
	app := protectedApp(cfg, AdminOnly())

	req := httptest.NewRequest("GET", "/api/secure", nil)
	req.Header.Set("Cookie", TokenCookieName+"="+accessToken(t, cfg, "DRIVER"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// The rejection must not leak which roles are accepted
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "ADMIN")
}

func TestRoleMiddlewareAllowsListedRole(t *testing.T) {
	cfg := testConfig()
	app := protectedApp(cfg, RoleMiddleware(domain.RoleManager, domain.RoleDispatcher))

	req := httptest.NewRequest("GET", "/api/secure", nil)
	req.Header.Set("Cookie", TokenCookieName+"="+accessToken(t, cfg, "DISPATCHER"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRoleMiddlewareUnknownRoleDenied(t *testing.T) {
	cfg := testConfig()
	app := protectedApp(cfg, StaffOnly())

	req := httptest.NewRequest("GET", "/api/secure", nil)
	req.Header.Set("Cookie", TokenCookieName+"="+accessToken(t, cfg, "SUPERUSER"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func pageApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Use(PageAuthMiddleware(cfg))
	app.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.SendString("dashboard")
	})
	app.Get("/public", func(c *fiber.Ctx) error {
		return c.SendString("public")
	})
	return app
}

func TestPageAuthMiddlewareRedirectsWithFrom(t *testing.T) {
	app := pageApp(testConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/dashboard?tab=fleet", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?from=%2Fdashboard%3Ftab%3Dfleet", resp.Header.Get("Location"))
}

func TestPageAuthMiddlewareExpiredTokenRedirects(t *testing.T) {
	cfg := testConfig()
	app := pageApp(cfg)

	expired, err := jwt.GenerateAccessToken(1, "user@example.com", "ADMIN", cfg.JWT.Secret, -1)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("Cookie", TokenCookieName+"="+expired)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?from=%2Fdashboard", resp.Header.Get("Location"))
}

func TestPageAuthMiddlewareValidTokenPasses(t *testing.T) {
	cfg := testConfig()
	app := pageApp(cfg)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("Cookie", TokenCookieName+"="+accessToken(t, cfg, "ADMIN"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestPageAuthMiddlewareSkipsUnprotectedPaths(t *testing.T) {
	app := pageApp(testConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/public", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestTokenLifetimeMatchesConfig(t *testing.T) {
	cfg := testConfig()
	token := accessToken(t, cfg, "ADMIN")

	claims, err := jwt.ValidateAccessToken(token, cfg.JWT.Secret)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}
