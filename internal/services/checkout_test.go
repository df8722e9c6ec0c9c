package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartItem(price string, quantity int) ValidatedItem {
	p := decimal.RequireFromString(price)
	return ValidatedItem{
		ProductID: uuid.New(),
		Price:     p,
		Quantity:  quantity,
		Subtotal:  p.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

func TestOrderTotalsWithoutDiscount(t *testing.T) {
	items := []ValidatedItem{
		cartItem("8500", 2),
		cartItem("1200.50", 1),
	}

	total, discount, finalTotal := orderTotals(items, decimal.Zero)

	assert.True(t, decimal.RequireFromString("18200.50").Equal(total), "total %s", total)
	assert.True(t, discount.IsZero())
	assert.True(t, total.Equal(finalTotal))
}

func TestOrderTotalsWithCoupon(t *testing.T) {
	// Two units at 8500 with a 15% coupon.
	items := []ValidatedItem{cartItem("8500", 2)}

	total, discount, finalTotal := orderTotals(items, decimal.NewFromInt(15))

	assert.True(t, decimal.NewFromInt(17000).Equal(total), "total %s", total)
	assert.True(t, decimal.NewFromInt(2550).Equal(discount), "discount %s", discount)
	assert.True(t, decimal.NewFromInt(14450).Equal(finalTotal), "final total %s", finalTotal)
}

func TestOrderTotalsFinalIsTotalMinusDiscount(t *testing.T) {
	items := []ValidatedItem{
		cartItem("19.99", 3),
		cartItem("4.25", 2),
	}

	total, discount, finalTotal := orderTotals(items, decimal.NewFromInt(33))

	assert.True(t, finalTotal.Equal(total.Sub(discount)))
	assert.True(t, discount.LessThanOrEqual(total))
}

func TestOrderTotalsEmptyCart(t *testing.T) {
	total, discount, finalTotal := orderTotals(nil, decimal.NewFromInt(50))

	assert.True(t, total.IsZero())
	assert.True(t, discount.IsZero())
	assert.True(t, finalTotal.IsZero())
}

func TestMergeLines(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()

	merged := mergeLines([]CartLine{
		{ProductID: p1, Quantity: 3},
		{ProductID: p2, Quantity: 1},
		{ProductID: p1, Quantity: 3},
	})

	require.Len(t, merged, 2)
	assert.Equal(t, CartLine{ProductID: p1, Quantity: 6}, merged[0])
	assert.Equal(t, CartLine{ProductID: p2, Quantity: 1}, merged[1])

	assert.Empty(t, mergeLines(nil))
}

func TestCheckoutErrorMessages(t *testing.T) {
	id := uuid.New()

	var err error = &ProductNotFoundError{ProductID: id}
	require.ErrorContains(t, err, id.String())

	err = &InsufficientStockError{ProductName: "Arepa de queso", Available: 3}
	require.ErrorContains(t, err, "Arepa de queso")
	require.ErrorContains(t, err, "3")
}
