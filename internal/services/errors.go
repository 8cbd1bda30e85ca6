package services

import (
	"fmt"
	"strings"

	"delivery_manager/internal/models"
)

// ShortfallLine describes one product whose balance cannot cover the demand
// of the batch being validated.
type ShortfallLine struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Needed      int64  `json:"needed"`
	Available   int64  `json:"available"`
	Missing     int64  `json:"missing"`
}

// ShortfallError rejects a whole batch. It always carries every insufficient
// product, never just the first one found.
type ShortfallError struct {
	Lines []ShortfallLine
}

func (e *ShortfallError) Error() string {
	parts := make([]string, 0, len(e.Lines))
	for _, line := range e.Lines {
		parts = append(parts, fmt.Sprintf("%s needs %d, available %d (missing %d)",
			line.ProductName, line.Needed, line.Available, line.Missing))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// DuplicateOperationError signals that a delivery or return confirmation was
// already processed for this order.
type DuplicateOperationError struct {
	OrderID uint
	Kind    models.OperationKind
}

func (e *DuplicateOperationError) Error() string {
	return fmt.Sprintf("%s already processed for order %d", e.Kind, e.OrderID)
}

// ConfigurationError reports a standard mix whose active percentages do not
// sum to 100. Allocation degrades to the even-split fallback instead of
// failing, but the problem is still surfaced so a configuration owner can
// fix it.
type ConfigurationError struct {
	PercentageSum float64
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("mix configuration percentages sum to %.2f, expected 100", e.PercentageSum)
}

// PersistenceError wraps a backend write failure that happened after
// validation passed. The in-memory state has already been reverted by the
// time the caller sees it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// InvalidTransitionError rejects a transition requested from the wrong state.
type InvalidTransitionError struct {
	OrderID uint
	From    string
	Action  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d cannot %s from state %s", e.OrderID, e.Action, e.From)
}
