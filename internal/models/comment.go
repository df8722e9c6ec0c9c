package models

import "github.com/google/uuid"

// Comment is a user review on a product. A user may leave at most one
// comment per product; the composite unique index enforces it.
type Comment struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_comments_user_product" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_comments_user_product;index" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Content   string    `json:"content"`
	Rating    *int      `json:"rating,omitempty"`
}
