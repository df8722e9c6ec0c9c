package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/example/arepabuelas/internal/models"
)

func TestEvaluateCoupon(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name        string
		coupon      models.Coupon
		alreadyUsed bool
		eligible    bool
		reason      IneligibilityReason
	}{
		{
			name:     "eligible with open window",
			coupon:   models.Coupon{MaxUses: 10, TimesUsed: 3},
			eligible: true,
		},
		{
			name:     "eligible inside date window",
			coupon:   models.Coupon{ValidFrom: &past, ValidUntil: &future, MaxUses: 1},
			eligible: true,
		},
		{
			name:   "not yet valid",
			coupon: models.Coupon{ValidFrom: &future, MaxUses: 1},
			reason: ReasonNotYetValid,
		},
		{
			name:   "expired",
			coupon: models.Coupon{ValidUntil: &past, MaxUses: 1},
			reason: ReasonExpired,
		},
		{
			name:   "uses exhausted",
			coupon: models.Coupon{MaxUses: 5, TimesUsed: 5},
			reason: ReasonExhaustedUses,
		},
		{
			name:        "already used by this user",
			coupon:      models.Coupon{MaxUses: 100, TimesUsed: 1},
			alreadyUsed: true,
			reason:      ReasonAlreadyUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eligible, reason := EvaluateCoupon(&tt.coupon, now, tt.alreadyUsed)
			assert.Equal(t, tt.eligible, eligible)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestEvaluateCouponDateWindowChecksBeforeUsage(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	// An expired coupon that is also exhausted reports the date problem.
	coupon := models.Coupon{ValidUntil: &past, MaxUses: 1, TimesUsed: 1}
	eligible, reason := EvaluateCoupon(&coupon, now, false)
	assert.False(t, eligible)
	assert.Equal(t, ReasonExpired, reason)
}

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		percent string
		want    string
	}{
		{"fifteen percent", "17000", "15", "2550"},
		{"zero percent", "17000", "0", "0"},
		{"full discount", "100", "100", "100"},
		{"rounds to cents", "99.99", "10", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			percent := decimal.RequireFromString(tt.percent)
			want := decimal.RequireFromString(tt.want)

			got := ComputeDiscount(total, percent)
			assert.True(t, want.Equal(got), "want %s, got %s", want, got)
		})
	}
}

func TestIneligibilityReasonMessages(t *testing.T) {
	for _, reason := range []IneligibilityReason{
		ReasonNotYetValid, ReasonExpired, ReasonExhaustedUses, ReasonAlreadyUsed,
	} {
		assert.NotEmpty(t, reason.Message())
	}
}
