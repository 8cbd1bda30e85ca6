package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductMixConfig is one line of the global standard proportion: the share
// of every standard order assigned to one product. Only active rows take part
// in allocation, and the active percentages must sum to 100 (within 0.01)
// for standard allocation to be usable at all.
type ProductMixConfig struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ProductID   uint           `json:"product_id" gorm:"not null;uniqueIndex"`
	ProductName string         `json:"product_name" gorm:"not null"`
	Percentage  float64        `json:"percentage" gorm:"not null"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}
