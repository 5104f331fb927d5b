package middleware

import (
	"github.com/aydinemrecan/scamradar-backend/internal/config"
	"github.com/aydinemrecan/scamradar-backend/internal/dto"
	"github.com/aydinemrecan/scamradar-backend/internal/models"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Locals keys set by the auth middleware.
const (
	LocalsToken = "user"
	LocalsUser  = "currentUser"
)

// Protected validates the bearer token and loads the account. Both handlers
// must be registered together, in order.
func Protected(db *gorm.DB, cfg *config.Config) []fiber.Handler {
	return []fiber.Handler{
		jwtware.New(jwtware.Config{
			SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
			ContextKey: LocalsToken,
			ErrorHandler: func(c *fiber.Ctx, _ error) error {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Error: "missing or invalid access token",
				})
			},
		}),
		loadUser(db),
	}
}

func loadUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals(LocalsToken).(*jwt.Token)
		if !ok {
			return unauthorized(c)
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c)
		}
		// Refresh tokens are only valid on the refresh endpoint.
		if typ, _ := claims["type"].(string); typ != "access" {
			return unauthorized(c)
		}
		id, ok := claims["user_id"].(float64)
		if !ok || id <= 0 {
			return unauthorized(c)
		}

		var user models.User
		if err := db.First(&user, uint(id)).Error; err != nil {
			return unauthorized(c)
		}
		if !user.IsActive || user.AccountStatus != models.AccountActive {
			return unauthorized(c)
		}

		c.Locals(LocalsUser, &user)
		return c.Next()
	}
}

// CurrentUser returns the authenticated account, or nil outside Protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalsUser).(*models.User)
	return user
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: "missing or invalid access token",
	})
}
