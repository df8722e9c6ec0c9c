package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/arepabuelas/internal/models"
	"github.com/example/arepabuelas/internal/utils"
)

// CouponHandler manages discount codes.
type CouponHandler struct {
	db *gorm.DB
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(db *gorm.DB) *CouponHandler {
	return &CouponHandler{db: db}
}

// ListAvailable returns coupons anyone can still redeem.
func (h *CouponHandler) ListAvailable(c *fiber.Ctx) error {
	now := time.Now()

	var coupons []models.Coupon
	if err := h.db.
		Where("active = ?", true).
		Where("valid_from IS NULL OR valid_from <= ?", now).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		Where("times_used < max_uses").
		Order("discount desc").
		Find(&coupons).Error; err != nil {
		return err
	}

	out := make([]fiber.Map, 0, len(coupons))
	for _, coupon := range coupons {
		out = append(out, fiber.Map{
			"code":           coupon.Code,
			"discount":       coupon.Discount,
			"description":    coupon.Description,
			"valid_from":     coupon.ValidFrom,
			"valid_until":    coupon.ValidUntil,
			"max_uses":       coupon.MaxUses,
			"times_used":     coupon.TimesUsed,
			"remaining_uses": coupon.MaxUses - coupon.TimesUsed,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"coupons": out}})
}

type couponWithStats struct {
	models.Coupon
	RemainingUses int   `json:"remaining_uses"`
	UniqueUsers   int64 `json:"unique_users"`
}

// ListCoupons returns every coupon with usage statistics.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	query := h.db.Model(&models.Coupon{})

	if v := c.Query("active"); v != "" {
		query = query.Where("coupons.active = ?", v == "true")
	}

	var coupons []couponWithStats
	if err := query.
		Select("coupons.*, (coupons.max_uses - coupons.times_used) AS remaining_uses, COUNT(coupon_usages.id) AS unique_users").
		Joins("LEFT JOIN coupon_usages ON coupon_usages.coupon_id = coupons.id").
		Group("coupons.id").
		Order("coupons.created_at desc").
		Scan(&coupons).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"coupons": coupons}})
}

type couponCreateRequest struct {
	Code        string     `json:"code" validate:"required,min=3,max=50"`
	Discount    float64    `json:"discount" validate:"gte=0,lte=100"`
	Description string     `json:"description"`
	ValidFrom   *time.Time `json:"valid_from"`
	ValidUntil  *time.Time `json:"valid_until"`
	MaxUses     int        `json:"max_uses" validate:"omitempty,gte=1"`
}

// CreateCoupon adds a discount code. Codes are stored upper-cased.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req couponCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fieldErrs := utils.ValidateStruct(req); fieldErrs != nil {
		return validationResponse(c, fieldErrs)
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var existing models.Coupon
	if err := h.db.Where("code = ?", code).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "a coupon with that code already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	maxUses := req.MaxUses
	if maxUses == 0 {
		maxUses = 1
	}

	coupon := models.Coupon{
		Code:        code,
		Discount:    decimal.NewFromFloat(req.Discount),
		Description: req.Description,
		ValidFrom:   req.ValidFrom,
		ValidUntil:  req.ValidUntil,
		MaxUses:     maxUses,
		Active:      true,
	}

	if err := h.db.Create(&coupon).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "coupon created",
		"data":    fiber.Map{"coupon": coupon},
	})
}

type couponUpdateRequest struct {
	Discount    *float64   `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Description *string    `json:"description"`
	ValidFrom   *time.Time `json:"valid_from"`
	ValidUntil  *time.Time `json:"valid_until"`
	MaxUses     *int       `json:"max_uses" validate:"omitempty,gte=1"`
	Active      *bool      `json:"active"`
}

// UpdateCoupon applies the supplied fields only.
func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var coupon models.Coupon
	if err := h.db.First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "coupon not found")
		}
		return err
	}

	var req couponUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fieldErrs := utils.ValidateStruct(req); fieldErrs != nil {
		return validationResponse(c, fieldErrs)
	}

	updates := map[string]any{}
	if req.Discount != nil {
		updates["discount"] = decimal.NewFromFloat(*req.Discount)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ValidFrom != nil {
		updates["valid_from"] = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.MaxUses != nil {
		updates["max_uses"] = *req.MaxUses
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&coupon).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "coupon updated",
		"data":    fiber.Map{"coupon": coupon},
	})
}

// DeleteCoupon soft-deletes a coupon by flipping its active flag.
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var coupon models.Coupon
	if err := h.db.First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "coupon not found")
		}
		return err
	}

	if err := h.db.Model(&coupon).Update("active", false).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "coupon deactivated"})
}
