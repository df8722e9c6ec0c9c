package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/arepabuelas/internal/middleware"
	"github.com/example/arepabuelas/internal/models"
	"github.com/example/arepabuelas/internal/services"
	"github.com/example/arepabuelas/internal/utils"
)

// CheckoutHandler exposes the purchase flow.
type CheckoutHandler struct {
	db       *gorm.DB
	checkout *services.CheckoutService
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(db *gorm.DB) *CheckoutHandler {
	return &CheckoutHandler{db: db, checkout: services.NewCheckoutService(db)}
}

type checkoutItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type checkoutRequest struct {
	Items        []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	CouponCode   string                `json:"coupon_code" validate:"omitempty,min=1,max=50"`
	PaymentToken string                `json:"payment_token" validate:"required"`
	Last4        string                `json:"last4" validate:"required,last4"`
	Expiry       string                `json:"expiry" validate:"required,cardexpiry"`
	CardType     string                `json:"card_type" validate:"omitempty,oneof=visa mastercard amex discover"`
}

// Checkout processes a cart into a completed order.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if fieldErrs := utils.ValidateStruct(req); fieldErrs != nil {
		return validationResponse(c, fieldErrs)
	}

	lines := make([]services.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}
		lines = append(lines, services.CartLine{ProductID: productID, Quantity: item.Quantity})
	}

	result, err := h.checkout.Checkout(c.Context(), user.ID, lines, req.CouponCode, services.PaymentDetails{
		Token:    req.PaymentToken,
		Last4:    req.Last4,
		Expiry:   req.Expiry,
		CardType: req.CardType,
	})
	if err != nil {
		var notFound *services.ProductNotFoundError
		if errors.As(err, &notFound) {
			return fiber.NewError(fiber.StatusNotFound,
				fmt.Sprintf("product with ID %s not found", notFound.ProductID))
		}

		var noStock *services.InsufficientStockError
		if errors.As(err, &noStock) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("insufficient stock for %s, available: %d", noStock.ProductName, noStock.Available))
		}

		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "purchase processed",
		"data": fiber.Map{
			"order": fiber.Map{
				"id":          result.Order.ID,
				"total":       result.Order.Total,
				"discount":    result.Order.Discount,
				"final_total": result.Order.FinalTotal,
				"coupon_code": result.Order.CouponCode,
				"status":      result.Order.Status,
				"created_at":  result.Order.CreatedAt,
			},
			"payment": fiber.Map{
				"id":     result.Payment.ID,
				"last4":  result.Payment.Last4,
				"status": result.Payment.Status,
			},
			"items": result.Items,
		},
	})
}

type validateCouponRequest struct {
	Code string `json:"code"`
}

// ValidateCoupon checks a code for the acting user and reports the specific
// ineligibility reason.
func (h *CheckoutHandler) ValidateCoupon(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req validateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Code) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "coupon code is required")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var coupon models.Coupon
	if err := h.db.Where("code = ? AND active = ?", code, true).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "coupon not valid or expired")
		}
		return err
	}

	var used int64
	if err := h.db.Model(&models.CouponUsage{}).
		Where("user_id = ? AND coupon_id = ?", user.ID, coupon.ID).
		Count(&used).Error; err != nil {
		return err
	}

	eligible, reason := services.EvaluateCoupon(&coupon, time.Now(), used > 0)
	if !eligible {
		return fiber.NewError(fiber.StatusBadRequest, reason.Message())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "coupon valid",
		"data": fiber.Map{
			"coupon": fiber.Map{
				"code":        coupon.Code,
				"discount":    coupon.Discount,
				"description": coupon.Description,
			},
		},
	})
}

type simulateCardRequest struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
	Name       string `json:"name"`
}

// SimulateCard format-checks a card and returns a simulated payment token.
// The full number is never stored or echoed back.
func (h *CheckoutHandler) SimulateCard(c *fiber.Ctx) error {
	var req simulateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	card, err := services.SimulateCardValidation(req.CardNumber, req.Expiry, req.CVV, req.Name)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "card validated (simulation)",
		"data":    card,
	})
}
