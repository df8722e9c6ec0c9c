package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/arepabuelas/internal/config"
	"github.com/example/arepabuelas/internal/models"
	"github.com/example/arepabuelas/internal/utils"
)

const userContextKey = "currentUser"

// Auth validates the bearer token, loads the account behind it and stores it
// in the request context. Missing or invalid tokens and vanished users yield
// 401; an account that has not been validated by an administrator yields 403.
func Auth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolveUser(c, db, cfg)
		if err != nil {
			return err
		}

		c.Locals(userContextKey, user)
		return c.Next()
	}
}

// OptionalAuth runs the same pipeline as Auth but never rejects: any failure
// leaves the request anonymous. Used on public endpoints that personalize
// output for logged-in visitors.
func OptionalAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, err := resolveUser(c, db, cfg); err == nil {
			c.Locals(userContextKey, user)
		}
		return c.Next()
	}
}

// RequireAdmin rejects requests whose context user is not an administrator.
// It must run after Auth.
func RequireAdmin(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	if !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "administrator privileges required")
	}

	return c.Next()
}

// CurrentUser extracts the authenticated user from context.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return nil, false
	}

	if user, ok := value.(*models.User); ok {
		return user, true
	}

	return nil, false
}

func resolveUser(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) (*models.User, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
	}

	userID, err := utils.ParseToken(cfg.JWTSecret, parts[1])
	if err != nil || userID == uuid.Nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "user not found")
		}
		return nil, err
	}

	if !user.Validated {
		return nil, fiber.NewError(fiber.StatusForbidden, "account pending administrator validation")
	}

	return &user, nil
}
