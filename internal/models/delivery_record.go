package models

import (
	"time"
)

type OperationKind string

const (
	OperationDelivery OperationKind = "delivery"
	OperationReturn   OperationKind = "return"
)

// DeliveryRecord is one append-only history entry, created exactly once per
// confirmed delivery or return. Records are never updated; the manual
// correction path lives outside this subsystem.
type DeliveryRecord struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	RecordID       string         `json:"record_id" gorm:"size:64;uniqueIndex;not null"`
	ClientID       uint           `json:"client_id" gorm:"not null;index"`
	OrderID        uint           `json:"order_id" gorm:"not null;index"`
	OperationKind  OperationKind  `json:"operation_kind" gorm:"not null"`
	TotalQuantity  int            `json:"total_quantity" gorm:"not null"`
	PriorSubStatus OrderSubStatus `json:"prior_sub_status" gorm:"not null"`
	Items          []DeliveryItem `json:"items" gorm:"foreignKey:DeliveryRecordID"`
	CreatedAt      time.Time      `json:"created_at"`
}

// DeliveryItem is one resolved product/quantity line of a DeliveryRecord.
type DeliveryItem struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	DeliveryRecordID uint   `json:"delivery_record_id" gorm:"not null;index"`
	ProductID        uint   `json:"product_id" gorm:"not null"`
	ProductName      string `json:"product_name" gorm:"not null"`
	Quantity         int    `json:"quantity" gorm:"not null"`
}
