// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Name              string         `json:"name" gorm:"size:200;not null;index"`
	Slug              string         `json:"slug" gorm:"uniqueIndex;size:220;not null"`
	SKU               string         `json:"sku" gorm:"uniqueIndex;size:100;not null"`
	Description       string         `json:"description" gorm:"type:text"`
	Price             float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	ComparePrice      *float64       `json:"compare_price" gorm:"type:decimal(10,2)"`
	StockQuantity     int            `json:"stock_quantity" gorm:"not null;default:0"`
	LowStockThreshold int            `json:"low_stock_threshold" gorm:"not null;default:10"`
	Images            pq.StringArray `json:"images" gorm:"type:text[]"`
	CategoryID        *uuid.UUID     `json:"category_id" gorm:"type:uuid;index"`
	IsActive          bool           `json:"is_active" gorm:"not null;default:true;index"`
	IsFeatured        bool           `json:"is_featured" gorm:"not null;default:false;index"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (p *Product) IsOnSale() bool {
	return p.ComparePrice != nil && *p.ComparePrice > p.Price
}

func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0
}

func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

// CanOrder reports whether the requested quantity is currently available.
// This is a point-in-time check; order creation re-validates under a
// conditional update so concurrent buyers cannot both take the last unit.
func (p *Product) CanOrder(quantity int) bool {
	return p.IsActive && p.StockQuantity >= quantity
}
