package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{
		OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled,
	} {
		assert.True(t, ValidOrderStatus(s), "status %q", s)
	}

	for _, s := range []string{"", "shipped", "PENDING", "done"} {
		assert.False(t, ValidOrderStatus(s), "status %q", s)
	}
}

func TestOrderCanCancel(t *testing.T) {
	assert.True(t, (&Order{Status: OrderStatusPending}).CanCancel())
	assert.False(t, (&Order{Status: OrderStatusProcessing}).CanCancel())
	assert.False(t, (&Order{Status: OrderStatusCompleted}).CanCancel())
	assert.False(t, (&Order{Status: OrderStatusCancelled}).CanCancel())
}
