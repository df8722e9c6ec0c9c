package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/arepabuelas/internal/models"
)

// ProductNotFoundError reports the cart line whose product is missing or
// inactive.
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError reports a cart line asking for more units than the
// product has left.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available", e.ProductName, e.Available)
}

// CartLine is one requested product in a checkout.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// PaymentDetails carries the simulated instrument: a token plus masked card
// metadata. The full card number is never part of a checkout.
type PaymentDetails struct {
	Token    string
	Last4    string
	Expiry   string
	CardType string
}

// ValidatedItem is a cart line after the product lookup, with the price
// snapshot that ends up on the order item.
type ValidatedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CheckoutResult is the durable outcome of a committed checkout.
type CheckoutResult struct {
	Order   models.Order
	Payment models.Payment
	Items   []ValidatedItem
}

// CheckoutService converts carts into orders inside a single database
// transaction.
type CheckoutService struct {
	db *gorm.DB
}

// NewCheckoutService constructs CheckoutService.
func NewCheckoutService(db *gorm.DB) *CheckoutService {
	return &CheckoutService{db: db}
}

// Checkout atomically turns the cart into an Order, its OrderItems and a
// simulated Payment, deducting stock and recording coupon usage. Every step
// runs in one transaction; any failure rolls the whole purchase back.
//
// Product rows are read under FOR UPDATE so concurrent checkouts against the
// same product serialize at the stock check instead of both passing it.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, lines []CartLine, couponCode string, payment PaymentDetails) (*CheckoutResult, error) {
	lines = mergeLines(lines)

	var result CheckoutResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := make([]ValidatedItem, 0, len(lines))

		for _, line := range lines {
			var product models.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ? AND active = ?", line.ProductID, true).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ProductNotFoundError{ProductID: line.ProductID}
				}
				return err
			}

			if product.Stock < line.Quantity {
				return &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
			}

			qty := decimal.NewFromInt(int64(line.Quantity))
			items = append(items, ValidatedItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  line.Quantity,
				Subtotal:  product.Price.Mul(qty),
			})
		}

		var (
			appliedCoupon   *models.Coupon
			discountPercent = decimal.Zero
			normalizedCode  *string
		)

		if couponCode != "" {
			code := strings.ToUpper(strings.TrimSpace(couponCode))
			normalizedCode = &code

			var coupon models.Coupon
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&coupon, "code = ? AND active = ?", code, true).Error
			switch {
			case err == nil:
				var used int64
				if err := tx.Model(&models.CouponUsage{}).
					Where("user_id = ? AND coupon_id = ?", userID, coupon.ID).
					Count(&used).Error; err != nil {
					return err
				}

				// An ineligible coupon does not abort the checkout, it is
				// simply not applied.
				if eligible, _ := EvaluateCoupon(&coupon, time.Now(), used > 0); eligible {
					appliedCoupon = &coupon
					discountPercent = coupon.Discount
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
			default:
				return err
			}
		}

		total, discount, finalTotal := orderTotals(items, discountPercent)

		order := models.Order{
			UserID:     userID,
			Total:      total,
			Discount:   discount,
			FinalTotal: finalTotal,
			CouponCode: normalizedCode,
			Status:     models.OrderStatusPending,
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range items {
			orderItem := models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
				Subtotal:  item.Subtotal,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		token := payment.Token
		if token == "" {
			token = uuid.NewString()
		}

		cardType := payment.CardType
		if cardType == "" {
			cardType = "unknown"
		}

		paymentRow := models.Payment{
			OrderID:      order.ID,
			PaymentToken: token,
			Last4:        payment.Last4,
			ExpiryMasked: payment.Expiry,
			CardType:     cardType,
			Status:       models.PaymentStatusApproved,
		}

		if err := tx.Create(&paymentRow).Error; err != nil {
			return err
		}

		if err := tx.Model(&order).Update("status", models.OrderStatusCompleted).Error; err != nil {
			return err
		}

		if appliedCoupon != nil {
			usage := models.CouponUsage{
				UserID:   userID,
				CouponID: appliedCoupon.ID,
				UsedAt:   time.Now(),
			}
			if err := tx.Create(&usage).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.Coupon{}).
				Where("id = ?", appliedCoupon.ID).
				UpdateColumn("times_used", gorm.Expr("times_used + 1")).Error; err != nil {
				return err
			}
		}

		order.Status = models.OrderStatusCompleted
		result = CheckoutResult{Order: order, Payment: paymentRow, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// mergeLines folds lines that repeat a product id into a single line, so the
// stock check sees the combined quantity instead of validating each repeat
// against the same undecremented row.
func mergeLines(lines []CartLine) []CartLine {
	merged := make([]CartLine, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))

	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	return merged
}

// orderTotals sums the line subtotals and applies the percentage discount.
func orderTotals(items []ValidatedItem, discountPercent decimal.Decimal) (total, discount, finalTotal decimal.Decimal) {
	total = decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}

	discount = decimal.Zero
	if discountPercent.IsPositive() {
		discount = ComputeDiscount(total, discountPercent)
	}

	return total, discount, total.Sub(discount)
}
