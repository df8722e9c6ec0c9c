package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coupon is a percentage discount code. Codes are stored upper-cased.
// Deactivation is a soft delete.
type Coupon struct {
	BaseModel
	Code        string          `gorm:"uniqueIndex" json:"code"`
	Discount    decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount"`
	Description string          `json:"description,omitempty"`
	ValidFrom   *time.Time      `json:"valid_from,omitempty"`
	ValidUntil  *time.Time      `json:"valid_until,omitempty"`
	MaxUses     int             `gorm:"default:1" json:"max_uses"`
	TimesUsed   int             `json:"times_used"`
	Active      bool            `gorm:"default:true" json:"active"`
}

// CouponUsage records a redemption. The composite unique index guarantees a
// user redeems a given coupon at most once.
type CouponUsage struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_coupon_usage_user_coupon" json:"user_id"`
	CouponID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_coupon_usage_user_coupon;index" json:"coupon_id"`
	Coupon   *Coupon   `json:"coupon,omitempty"`
	UsedAt   time.Time `json:"used_at"`
}
