package middleware

import (
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// RequireModerator gates moderation endpoints. Must run after Protected.
func RequireModerator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsModerator() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: "moderator access required",
			})
		}
		return c.Next()
	}
}

// RequireAdmin gates admin-only endpoints. Must run after Protected.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.HasAdminAccess() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: "admin access required",
			})
		}
		return c.Next()
	}
}
