package models

import (
	"time"
)

// OrderItem is one line of a custom order's product mix. Orders with the
// standard mix type carry no items; their mix is derived from ProductMixConfig.
type OrderItem struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	OrderID     uint      `json:"order_id" gorm:"not null;uniqueIndex:idx_order_product_name"`
	ProductName string    `json:"product_name" gorm:"not null;uniqueIndex:idx_order_product_name"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
