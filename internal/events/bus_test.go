package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(func(Event) { order = append(order, "first") })
	bus.Subscribe(func(Event) { order = append(order, "second") })
	bus.Subscribe(func(Event) { order = append(order, "third") })

	bus.Notify(Event{Type: OrderPicked, OccurredAt: time.Now()})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	var received []Event
	unsubscribe := bus.Subscribe(func(e Event) { received = append(received, e) })

	bus.Notify(Event{Type: OrderPicked})
	unsubscribe()
	bus.Notify(Event{Type: OrderDispatched})

	require.Len(t, received, 1)
	assert.Equal(t, OrderPicked, received[0].Type)
}

func TestBus_SubscriberSeesEventFields(t *testing.T) {
	bus := NewBus()

	var got Event
	bus.Subscribe(func(e Event) { got = e })

	bus.Notify(Event{Type: DeliveryConfirmed, OrderID: 7, ClientID: 3, Status: "forecast", SubStatus: "pending"})

	assert.Equal(t, DeliveryConfirmed, got.Type)
	assert.Equal(t, uint(7), got.OrderID)
	assert.Equal(t, uint(3), got.ClientID)
}
