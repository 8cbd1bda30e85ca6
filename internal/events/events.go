package events

import "time"

type EventType string

const (
	OrderScheduled         EventType = "order_scheduled"
	OrderConfirmed         EventType = "order_confirmed"
	OrderPicked            EventType = "order_picked"
	OrderPickUndone        EventType = "order_pick_undone"
	OrderDispatched        EventType = "order_dispatched"
	OrderReturnedToPicking EventType = "order_returned_to_picking"
	DeliveryConfirmed      EventType = "delivery_confirmed"
	ReturnConfirmed        EventType = "return_confirmed"
	ConfigInvalid          EventType = "config_invalid"
)

// Event describes one committed fulfillment state change. Events are emitted
// only after the persistence write succeeds, never for reverted transitions.
type Event struct {
	Type       EventType `json:"type"`
	OrderID    uint      `json:"order_id,omitempty"`
	ClientID   uint      `json:"client_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	SubStatus  string    `json:"sub_status,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier receives committed fulfillment events. Implementations must not
// block the transition path for long; failures are logged, never propagated
// back into the state machine.
type Notifier interface {
	Notify(event Event)
}
