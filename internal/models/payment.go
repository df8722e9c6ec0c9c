package models

import "github.com/google/uuid"

// Payment statuses.
const (
	PaymentStatusApproved = "approved"
)

// Payment records the simulated payment for an order. Only masked card data
// is ever stored: the token, last four digits, masked expiry and brand.
type Payment struct {
	BaseModel
	OrderID      uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	PaymentToken string    `json:"payment_token"`
	Last4        string    `json:"last4"`
	ExpiryMasked string    `json:"expiry_masked"`
	CardType     string    `json:"card_type"`
	Status       string    `json:"status"`
}
