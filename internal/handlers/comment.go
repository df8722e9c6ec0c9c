package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/arepabuelas/internal/middleware"
	"github.com/example/arepabuelas/internal/models"
	"github.com/example/arepabuelas/internal/utils"
)

// CommentHandler manages product reviews.
type CommentHandler struct {
	db *gorm.DB
}

// NewCommentHandler constructs CommentHandler.
func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{db: db}
}

type commentCreateRequest struct {
	Content string `json:"content" validate:"required,min=5,max=1000"`
	Rating  *int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

// AddComment posts a review on a product, one per user and product.
func (h *CommentHandler) AddComment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req commentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fieldErrs := utils.ValidateStruct(req); fieldErrs != nil {
		return validationResponse(c, fieldErrs)
	}

	var product models.Product
	if err := h.db.First(&product, "id = ? AND active = ?", productID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var existing models.Comment
	if err := h.db.Where("user_id = ? AND product_id = ?", user.ID, productID).
		First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "you already commented on this product, edit your existing comment instead")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	comment := models.Comment{
		UserID:    user.ID,
		ProductID: productID,
		Content:   req.Content,
		Rating:    req.Rating,
	}

	if err := h.db.Create(&comment).Error; err != nil {
		return err
	}

	if err := h.db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "photo")
	}).First(&comment, "id = ?", comment.ID).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "comment added",
		"data":    fiber.Map{"comment": comment},
	})
}

// ListComments returns a product's comments with their authors.
func (h *CommentHandler) ListComments(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Comment{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return err
	}

	var comments []models.Comment
	if err := h.db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "photo")
	}).Where("product_id = ?", productID).
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&comments).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"comments": comments, "total": total},
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type commentUpdateRequest struct {
	Content *string `json:"content" validate:"omitempty,min=5,max=1000"`
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

// UpdateComment lets the author amend their own comment.
func (h *CommentHandler) UpdateComment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var comment models.Comment
	if err := h.db.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "comment not found")
		}
		return err
	}

	if comment.UserID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "you cannot edit this comment")
	}

	var req commentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fieldErrs := utils.ValidateStruct(req); fieldErrs != nil {
		return validationResponse(c, fieldErrs)
	}

	updates := map[string]any{}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&comment).Updates(updates).Error; err != nil {
		return err
	}

	if err := h.db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "photo")
	}).First(&comment, "id = ?", comment.ID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "comment updated",
		"data":    fiber.Map{"comment": comment},
	})
}

// DeleteComment removes a comment; allowed for its author or an admin.
func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var comment models.Comment
	if err := h.db.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "comment not found")
		}
		return err
	}

	if comment.UserID != user.ID && !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "you cannot delete this comment")
	}

	if err := h.db.Delete(&comment).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "comment deleted"})
}
