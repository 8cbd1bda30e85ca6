package models

import (
	"time"
)

type MovementKind string

const (
	MovementDebit  MovementKind = "debit"
	MovementCredit MovementKind = "credit"
)

type ReferenceKind string

const (
	ReferenceDelivery   ReferenceKind = "delivery"
	ReferenceReturn     ReferenceKind = "return"
	ReferenceProduction ReferenceKind = "production"
)

// StockMovement is one signed entry of the finished-goods ledger. A product's
// balance is the sum of its movement quantities; there is no stored balance
// column. The unique index on (reference_kind, reference_id, product_id)
// makes the database the source of truth for "this operation already debited
// this product", closing the read-then-write race of an application-level
// existence check.
type StockMovement struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	ProductID     uint          `json:"product_id" gorm:"not null;index;uniqueIndex:idx_movement_reference"`
	Kind          MovementKind  `json:"kind" gorm:"not null"`
	Quantity      int64         `json:"quantity" gorm:"not null"`
	ReferenceKind ReferenceKind `json:"reference_kind" gorm:"not null;uniqueIndex:idx_movement_reference"`
	ReferenceID   uint          `json:"reference_id" gorm:"not null;index;uniqueIndex:idx_movement_reference"`
	CreatedAt     time.Time     `json:"created_at"`
}
