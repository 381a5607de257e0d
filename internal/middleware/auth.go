// Package middleware provides HTTP middleware functions for authentication and authorization.
// These middleware functions are used to protect routes and enforce role-based access control.
package middleware

import (
	"strings"

	"github.com/BishoyAdelAziz/backend/internal/auth"
	"github.com/BishoyAdelAziz/backend/internal/config"
	"github.com/BishoyAdelAziz/backend/internal/models"
	"github.com/BishoyAdelAziz/backend/internal/repository"
	"github.com/gofiber/fiber/v2"
)

// Authenticate is a middleware that ensures the request carries a valid
// bearer token. The token is read from the Authorization header first,
// then from the "jwt" cookie. The principal is loaded fresh from the
// database on every request so deactivation and password changes take
// effect immediately.
//
// Context Locals Set:
//   - user_id: The authenticated user's ID (string)
//   - user_role: The user's role (models.Role)
//   - user_email: The user's email address (string)
//   - user: The full *models.User record
//
// Example:
//
//	api := app.Group("/api/projects", middleware.Authenticate(cfg))
func Authenticate(cfg *config.Config) fiber.Handler {
	userRepo := repository.NewUserRepository()

	return func(c *fiber.Ctx) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return unauthorized(c, "You are not logged in. Please log in to get access.")
		}

		claims, err := auth.ParseToken(tokenString, []byte(cfg.JWTSecret))
		if err != nil {
			return unauthorized(c, "Invalid or expired token. Please log in again.")
		}

		user, err := userRepo.FindByID(c.Context(), claims.UserID)
		if err != nil {
			return unauthorized(c, "The user belonging to this token no longer exists.")
		}

		if !user.Active || !user.IsVerified {
			return unauthorized(c, "This account is not active.")
		}

		// Tokens issued before the last password change are rejected.
		if claims.IssuedAt != nil && user.ChangedPasswordAfter(claims.IssuedAt.Time) {
			return unauthorized(c, "Password changed recently. Please log in again.")
		}

		c.Locals("user_id", user.ID)
		c.Locals("user_role", user.Role)
		c.Locals("user_email", user.Email)
		c.Locals("user", user)

		return c.Next()
	}
}

// RequireRoles restricts a route to the given roles. Must be chained
// after Authenticate, which sets user_role in the context.
//
// Example:
//
//	projects.Post("/", middleware.RequireRoles(models.RoleAdmin, models.RoleModerator), h.Create)
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(models.Role)
		if !ok {
			return unauthorized(c, "You are not logged in. Please log in to get access.")
		}

		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "error",
			"message": "You do not have permission to perform this action.",
		})
	}
}

// extractToken reads the bearer token from the Authorization header,
// falling back to the jwt cookie set at login.
func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Cookies("jwt")
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}
