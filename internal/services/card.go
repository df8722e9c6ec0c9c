package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Card validation failures. The simulator only checks formats; any
// syntactically valid instrument is accepted.
var (
	ErrMissingCardData   = errors.New("incomplete card data")
	ErrInvalidCardNumber = errors.New("invalid card number")
	ErrInvalidExpiry     = errors.New("invalid expiry date (format: MM/YY)")
	ErrInvalidCVV        = errors.New("invalid cvv")
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{13,19}$`)
	cardExpiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cardCVVRe    = regexp.MustCompile(`^\d{3,4}$`)
	mastercardRe = regexp.MustCompile(`^5[1-5]`)
	amexRe       = regexp.MustCompile(`^3[47]`)
)

// CardValidation is the masked outcome of a simulated card check. The full
// number never leaves this function.
type CardValidation struct {
	PaymentToken string `json:"payment_token"`
	Last4        string `json:"last4"`
	CardType     string `json:"card_type"`
	Expiry       string `json:"expiry"`
}

// SimulateCardValidation format-checks a card and returns a simulated payment
// token plus masked metadata. No gateway is involved and nothing is persisted.
func SimulateCardValidation(number, expiry, cvv, holder string) (*CardValidation, error) {
	if number == "" || expiry == "" || cvv == "" || holder == "" {
		return nil, ErrMissingCardData
	}

	digits := strings.ReplaceAll(number, " ", "")
	if !cardNumberRe.MatchString(digits) {
		return nil, ErrInvalidCardNumber
	}

	if !cardExpiryRe.MatchString(expiry) {
		return nil, ErrInvalidExpiry
	}

	if !cardCVVRe.MatchString(cvv) {
		return nil, ErrInvalidCVV
	}

	return &CardValidation{
		PaymentToken: uuid.NewString(),
		Last4:        digits[len(digits)-4:],
		CardType:     DetectCardType(digits),
		Expiry:       expiry,
	}, nil
}

// DetectCardType identifies the brand from the leading digits.
func DetectCardType(digits string) string {
	switch {
	case strings.HasPrefix(digits, "4"):
		return "visa"
	case mastercardRe.MatchString(digits):
		return "mastercard"
	case amexRe.MatchString(digits):
		return "amex"
	case strings.HasPrefix(digits, "6"):
		return "discover"
	}
	return "unknown"
}
