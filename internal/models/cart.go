// internal/models/cart.go
package models

import "github.com/google/uuid"

// CartItem is one pending line in a user's cart. There is at most one row
// per (user, product); adding the same product again accumulates quantity.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (ci *CartItem) Subtotal() float64 {
	return float64(ci.Quantity) * ci.UnitPrice
}
