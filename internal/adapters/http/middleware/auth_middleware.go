package middleware

import (
	"net/url"
	"strings"

	"transbus-fleetdesk/internal/config"
	"transbus-fleetdesk/internal/core/domain"
	"transbus-fleetdesk/internal/pkg/jwt"
	"transbus-fleetdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TokenCookieName is the session cookie carrying the access token
const TokenCookieName = "token"

// RefreshCookieName is the cookie carrying the refresh token
const RefreshCookieName = "refreshToken"

// extractToken pulls the access token from the session cookie first, then the
// Authorization header
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies(TokenCookieName); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// AuthMiddleware creates the session middleware for API routes.
// Missing, malformed, badly signed and expired tokens are all the same hard
// 401; on success the decoded identity is attached to the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// SessionContext for downstream handlers
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// PageAuthMiddleware guards browser navigations under the configured page
// prefixes. Validation is identical to AuthMiddleware, but failure redirects
// to the login page with the original destination preserved.
func PageAuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		protected := false
		for _, prefix := range cfg.Auth.ProtectedPagePrefixes {
			if prefix != "" && strings.HasPrefix(c.Path(), prefix) {
				protected = true
				break
			}
		}
		if !protected {
			return c.Next()
		}

		redirect := func() error {
			target := cfg.Auth.LoginPath + "?from=" + url.QueryEscape(c.OriginalURL())
			return c.Redirect(target, fiber.StatusFound)
		}

		accessToken := extractToken(c)
		if accessToken == "" {
			return redirect()
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			// Expired and invalid are treated identically to absent
			return redirect()
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware.
// Deny by default: a role absent from the allow-list gets a generic 403 that
// does not reveal which roles would have been accepted.
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if domain.Role(role) == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// StaffOnly middleware allows back-office staff roles
func StaffOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin, domain.RoleManager, domain.RoleDispatcher)
}

// ManagerOrAdmin middleware allows MANAGER or ADMIN roles
func ManagerOrAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin, domain.RoleManager)
}

// CustomersOnly middleware allows customer roles
func CustomersOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleIndividualCustomer, domain.RoleBusinessCustomer)
}
