// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	OrderNumber     string        `json:"order_number" gorm:"uniqueIndex;size:50;not null"`
	UserID          uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	Status          OrderStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal        float64       `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	TotalAmount     float64       `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	ShippingAddress string        `json:"shipping_address" gorm:"type:text;not null"`
	Notes           string        `json:"notes" gorm:"type:text"`
	PaymentRef      string        `json:"payment_ref,omitempty" gorm:"size:100"`
	ShippedAt       *time.Time    `json:"shipped_at"`

	// Relationships. Items are owned exclusively by the order.
	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPaid
}

func (o *Order) ItemsCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// OrderItem freezes the product price, name and SKU at order time. Rows are
// created atomically with the parent order and never mutated afterwards.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	ProductName string    `json:"product_name" gorm:"size:200;not null"`
	ProductSKU  string    `json:"product_sku" gorm:"size:100;not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	UnitPrice   float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	TotalPrice  float64   `json:"total_price" gorm:"type:decimal(10,2);not null"`
}
