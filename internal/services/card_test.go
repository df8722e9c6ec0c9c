package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateCardValidation(t *testing.T) {
	card, err := SimulateCardValidation("4111 1111 1111 1111", "12/27", "123", "Abuela Carmen")
	require.NoError(t, err)

	assert.Equal(t, "1111", card.Last4)
	assert.Equal(t, "visa", card.CardType)
	assert.Equal(t, "12/27", card.Expiry)
	assert.NotEmpty(t, card.PaymentToken)
}

func TestSimulateCardValidationTokensAreUnique(t *testing.T) {
	first, err := SimulateCardValidation("4111111111111111", "12/27", "123", "A")
	require.NoError(t, err)
	second, err := SimulateCardValidation("4111111111111111", "12/27", "123", "A")
	require.NoError(t, err)

	assert.NotEqual(t, first.PaymentToken, second.PaymentToken)
}

func TestSimulateCardValidationRejections(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		expiry  string
		cvv     string
		holder  string
		wantErr error
	}{
		{"missing fields", "", "12/27", "123", "X", ErrMissingCardData},
		{"number too short", "4111", "12/27", "123", "X", ErrInvalidCardNumber},
		{"number with letters", "4111a11111111111", "12/27", "123", "X", ErrInvalidCardNumber},
		{"bad expiry month", "4111111111111111", "13/27", "123", "X", ErrInvalidExpiry},
		{"bad expiry format", "4111111111111111", "1227", "123", "X", ErrInvalidExpiry},
		{"bad cvv", "4111111111111111", "12/27", "12", "X", ErrInvalidCVV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SimulateCardValidation(tt.number, tt.expiry, tt.cvv, tt.holder)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDetectCardType(t *testing.T) {
	tests := []struct {
		digits string
		want   string
	}{
		{"4111111111111111", "visa"},
		{"5105105105105100", "mastercard"},
		{"341111111111111", "amex"},
		{"371111111111111", "amex"},
		{"6011111111111117", "discover"},
		{"9999999999999999", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectCardType(tt.digits), "digits %s", tt.digits)
	}
}
