package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a completed or in-flight purchase. FinalTotal = Total - Discount.
type Order struct {
	BaseModel
	UserID     uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	User       *User           `json:"user,omitempty"`
	Total      decimal.Decimal `gorm:"type:numeric(12,2)" json:"total"`
	Discount   decimal.Decimal `gorm:"type:numeric(12,2)" json:"discount"`
	FinalTotal decimal.Decimal `gorm:"type:numeric(12,2)" json:"final_total"`
	CouponCode *string         `json:"coupon_code"`
	Status     string          `gorm:"default:pending" json:"status"`
	Items      []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payment    *Payment        `gorm:"constraint:OnDelete:CASCADE" json:"payment,omitempty"`
}

// CanCancel reports whether the order may still be cancelled by its owner.
// Only pending orders qualify.
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending
}

// OrderItem snapshots one cart line. Price and Subtotal are copies of the
// product price at purchase time and never change afterwards.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;index" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2)" json:"subtotal"`
}
