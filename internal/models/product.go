package models

import "github.com/shopspring/decimal"

// Product is a catalog item. Deleting a product flips Active instead of
// removing the row so past orders keep their references.
type Product struct {
	BaseModel
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url,omitempty"`
	Active      bool            `gorm:"default:true" json:"active"`
	Comments    []Comment       `json:"comments,omitempty"`
}
