package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/arepabuelas/internal/models"
)

// IneligibilityReason explains why a coupon cannot be redeemed.
type IneligibilityReason string

const (
	ReasonNotYetValid   IneligibilityReason = "not_yet_valid"
	ReasonExpired       IneligibilityReason = "expired"
	ReasonExhaustedUses IneligibilityReason = "exhausted_uses"
	ReasonAlreadyUsed   IneligibilityReason = "already_used"
)

// Message returns the user-facing explanation for the reason.
func (r IneligibilityReason) Message() string {
	switch r {
	case ReasonNotYetValid:
		return "this coupon is not available yet"
	case ReasonExpired:
		return "this coupon has expired"
	case ReasonExhaustedUses:
		return "this coupon has reached its usage limit"
	case ReasonAlreadyUsed:
		return "you have already used this coupon"
	}
	return "coupon is not valid"
}

// EvaluateCoupon checks a coupon against the redemption rules: the date
// window, the global usage cap and the per-user once-only rule. It is shared
// by the validate-coupon endpoint, which surfaces the reason, and by
// checkout, which silently skips the discount on any ineligibility.
func EvaluateCoupon(coupon *models.Coupon, now time.Time, alreadyUsed bool) (bool, IneligibilityReason) {
	if coupon.ValidFrom != nil && coupon.ValidFrom.After(now) {
		return false, ReasonNotYetValid
	}

	if coupon.ValidUntil != nil && coupon.ValidUntil.Before(now) {
		return false, ReasonExpired
	}

	if coupon.TimesUsed >= coupon.MaxUses {
		return false, ReasonExhaustedUses
	}

	if alreadyUsed {
		return false, ReasonAlreadyUsed
	}

	return true, ""
}

// ComputeDiscount returns total × percent / 100, rounded to cents.
func ComputeDiscount(total, percent decimal.Decimal) decimal.Decimal {
	return total.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}
