package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/arepabuelas/internal/middleware"
	"github.com/example/arepabuelas/internal/models"
)

// AdminHandler manages administrator-only user management endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// ListUsers returns all users with optional validated/role filters.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	query := h.db.Model(&models.User{})

	if v := c.Query("validated"); v != "" {
		query = query.Where("validated = ?", v == "true")
	}

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at desc").Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"users": users, "count": len(users)},
	})
}

// ListPendingUsers returns accounts still awaiting validation.
func (h *AdminHandler) ListPendingUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := h.db.Where("validated = ? AND role = ?", false, models.RoleUser).
		Order("created_at desc").
		Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"users": users, "count": len(users)},
	})
}

// ValidateUser flips a pending account to validated.
func (h *AdminHandler) ValidateUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if user.Validated {
		return fiber.NewError(fiber.StatusBadRequest, "user is already validated")
	}

	if user.IsAdmin() {
		return fiber.NewError(fiber.StatusBadRequest, "administrators cannot be validated")
	}

	user.Validated = true
	if err := h.db.Model(&user).Update("validated", true).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "user validated",
		"data":    fiber.Map{"user": user},
	})
}

// DeleteUser removes an account; its orders and comments cascade.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	if actor.ID == id {
		return fiber.NewError(fiber.StatusBadRequest, "you cannot delete your own account")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if err := h.db.Select("Orders", "Comments").Delete(&user).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "user deleted"})
}
