package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusToSchedule OrderStatus = "to_schedule"
	StatusForecast   OrderStatus = "forecast"
	StatusScheduled  OrderStatus = "scheduled"
)

// OrderSubStatus is meaningful only while Status is StatusScheduled.
type OrderSubStatus string

const (
	SubStatusPending    OrderSubStatus = "pending"
	SubStatusPicked     OrderSubStatus = "picked"
	SubStatusDispatched OrderSubStatus = "dispatched"
)

type MixType string

const (
	MixStandard MixType = "standard"
	MixCustom   MixType = "custom"
)

// Order is a recurring reposition order. It is never hard-deleted, only
// rescheduled forward after each delivery or return.
type Order struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ClientID      uint           `json:"client_id" gorm:"not null;index"`
	ScheduledDate time.Time      `json:"scheduled_date" gorm:"not null"`
	TotalQuantity int            `json:"total_quantity" gorm:"not null"`
	MixType       MixType        `json:"mix_type" gorm:"default:'standard'"`
	Status        OrderStatus    `json:"status" gorm:"default:'to_schedule';index"`
	SubStatus     OrderSubStatus `json:"sub_status" gorm:"default:'pending'"`
	CustomItems   []OrderItem    `json:"custom_items,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// CustomItemsTotal sums the custom item quantities.
func (o *Order) CustomItemsTotal() int {
	total := 0
	for _, item := range o.CustomItems {
		total += item.Quantity
	}
	return total
}

// ValidateForConfirm checks the invariants required before an order may enter
// StatusScheduled. A custom order must have item quantities summing to its
// total quantity.
func (o *Order) ValidateForConfirm() error {
	if o.MixType == MixCustom {
		if sum := o.CustomItemsTotal(); sum != o.TotalQuantity {
			return fmt.Errorf("custom items sum %d does not match total quantity %d", sum, o.TotalQuantity)
		}
	}
	return nil
}
