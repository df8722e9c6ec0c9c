package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/arepabuelas/internal/models"
	"github.com/example/arepabuelas/internal/utils"
)

// ProductHandler manages catalog endpoints.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

type productWithStats struct {
	models.Product
	CommentCount  int64   `json:"comment_count"`
	AverageRating float64 `json:"average_rating"`
}

// ListProducts returns paginated products with comment statistics.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if v := c.Query("active"); v != "" {
		query = query.Where("products.active = ?", v == "true")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return err
	}

	var products []productWithStats
	if err := query.
		Select("products.*, COUNT(DISTINCT comments.id) AS comment_count, COALESCE(AVG(comments.rating), 0) AS average_rating").
		Joins("LEFT JOIN comments ON comments.product_id = products.id").
		Group("products.id").
		Order("products.created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Scan(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"products": products},
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct loads a product with its statistics and comments.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product productWithStats
	err = h.db.Model(&models.Product{}).
		Select("products.*, COUNT(DISTINCT comments.id) AS comment_count, COALESCE(AVG(comments.rating), 0) AS average_rating").
		Joins("LEFT JOIN comments ON comments.product_id = products.id").
		Where("products.id = ?", id).
		Group("products.id").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var comments []models.Comment
	if err := h.db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "photo")
	}).Where("product_id = ?", id).
		Order("created_at desc").
		Find(&comments).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"product": product, "comments": comments},
	})
}

type productCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=255"`
	Description string  `json:"description" validate:"required,min=10"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
}

// CreateProduct adds a catalog item.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fieldErrs := utils.ValidateStruct(req); fieldErrs != nil {
		return validationResponse(c, fieldErrs)
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Active:      true,
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "product created",
		"data":    fiber.Map{"product": product},
	})
}

type productUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=3,max=255"`
	Description *string  `json:"description" validate:"omitempty,min=10"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,url"`
	Active      *bool    `json:"active"`
}

// UpdateProduct applies the supplied fields only.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fieldErrs := utils.ValidateStruct(req); fieldErrs != nil {
		return validationResponse(c, fieldErrs)
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = decimal.NewFromFloat(*req.Price)
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&product).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "product updated",
		"data":    fiber.Map{"product": product},
	})
}

// DeleteProduct soft-deletes a product by flipping its active flag.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if err := h.db.Model(&product).Update("active", false).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "product deleted"})
}
