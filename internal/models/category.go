// internal/models/category.go
package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name        string     `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;size:120;not null"`
	Description string     `json:"description" gorm:"type:text"`
	ParentID    *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	IsActive    bool       `json:"is_active" gorm:"not null;default:true"`

	// Relationships
	Parent   *Category  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Products []Product  `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
