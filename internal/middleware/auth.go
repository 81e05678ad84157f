package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/orderdesk/internal/config"
	"github.com/example/orderdesk/internal/models"
	"github.com/example/orderdesk/internal/utils"
)

const userContextKey = "currentUser"

// AuthMiddleware validates JWT tokens and loads the authenticated user into
// context. The user row is re-read per request so role changes take effect
// without re-issuing tokens.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		userID, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
			}
			return err
		}

		c.Locals(userContextKey, &user)
		return c.Next()
	}
}

// RequireManager rejects requests from non-manager users. It must run after
// AuthMiddleware.
func RequireManager() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetCurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		if !user.IsManager() {
			return fiber.NewError(fiber.StatusForbidden, "manager access required")
		}
		return c.Next()
	}
}

// GetCurrentUser extracts the authenticated user from context.
func GetCurrentUser(c *fiber.Ctx) (*models.User, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return nil, false
	}

	if user, ok := value.(*models.User); ok {
		return user, true
	}

	return nil, false
}
