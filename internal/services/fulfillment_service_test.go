package services

import (
	"errors"
	"testing"
	"time"

	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fulfillmentFixture struct {
	*reservationFixture
	orders      repository.OrderRepository
	clients     repository.ClientRepository
	fulfillment FulfillmentService
}

func newFulfillmentFixture(t *testing.T) *fulfillmentFixture {
	t.Helper()
	base := newReservationFixture(t)
	f := &fulfillmentFixture{
		reservationFixture: base,
		orders:             repository.NewOrderRepository(base.db),
		clients:            repository.NewClientRepository(base.db),
	}
	f.fulfillment = NewFulfillmentService(f.orders, f.clients, base.service, base.notifier)
	return f
}

func (f *fulfillmentFixture) createClient(t *testing.T, periodicityDays int) *models.Client {
	t.Helper()
	client := &models.Client{Name: "Bakery Corner", PeriodicityDays: periodicityDays, IsActive: true}
	require.NoError(t, f.clients.Create(client))
	return client
}

func (f *fulfillmentFixture) createOrderInState(t *testing.T, clientID uint, scheduledDate time.Time, status models.OrderStatus, subStatus models.OrderSubStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		ClientID:      clientID,
		ScheduledDate: scheduledDate,
		TotalQuantity: 100,
		MixType:       models.MixStandard,
		Status:        status,
		SubStatus:     subStatus,
	}
	require.NoError(t, f.db.Create(order).Error)
	return order
}

func (f *fulfillmentFixture) reload(t *testing.T, id uint) *models.Order {
	t.Helper()
	order, err := f.orders.GetByID(id)
	require.NoError(t, err)
	return order
}

func TestCreateOrder_StartsUnscheduled(t *testing.T) {
	f := newFulfillmentFixture(t)
	client := f.createClient(t, 7)

	order := &models.Order{ClientID: client.ID, TotalQuantity: 50}
	require.NoError(t, f.fulfillment.CreateOrder(order))

	assert.Equal(t, models.StatusToSchedule, order.Status)
	assert.Equal(t, models.SubStatusPending, order.SubStatus)
	assert.Equal(t, models.MixStandard, order.MixType)
}

func TestCreateOrder_UnknownClientRejected(t *testing.T) {
	f := newFulfillmentFixture(t)

	err := f.fulfillment.CreateOrder(&models.Order{ClientID: 99, TotalQuantity: 50})
	require.Error(t, err)
}

func TestScheduleOrder_MovesToForecast(t *testing.T) {
	f := newFulfillmentFixture(t)
	client := f.createClient(t, 7)
	order := f.createOrderInState(t, client.ID, time.Time{}, models.StatusToSchedule, models.SubStatusPending)
	target := date(2024, time.March, 4)

	require.NoError(t, f.fulfillment.ScheduleOrder(order.ID, target, models.StatusForecast))

	got := f.reload(t, order.ID)
	assert.Equal(t, models.StatusForecast, got.Status)
	assert.True(t, got.ScheduledDate.Equal(target))
}

func TestScheduleOrder_WrongStateRejected(t *testing.T) {
	f := newFulfillmentFixture(t)
	client := f.createClient(t, 7)
	order := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusPending)

	err := f.fulfillment.ScheduleOrder(order.ID, date(2024, time.March, 11), models.StatusForecast)

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestConfirmOrder_PromotesForecast(t *testing.T) {
	f := newFulfillmentFixture(t)
	client := f.createClient(t, 7)
	order := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusForecast, models.SubStatusPending)

	require.NoError(t, f.fulfillment.ConfirmOrder(order.ID))

	got := f.reload(t, order.ID)
	assert.Equal(t, models.StatusScheduled, got.Status)
	assert.Equal(t, models.SubStatusPending, got.SubStatus)
}

func TestConfirmOrder_CustomItemMismatchRejected(t *testing.T) {
	f := newFulfillmentFixture(t)
	client := f.createClient(t, 7)
	order := &models.Order{
		ClientID:      client.ID,
		ScheduledDate: date(2024, time.March, 4),
		TotalQuantity: 100,
		MixType:       models.MixCustom,
		Status:        models.StatusForecast,
		SubStatus:     models.SubStatusPending,
		CustomItems: []models.OrderItem{
			{ProductName: "Traditional", Quantity: 40},
		},
	}
	require.NoError(t, f.db.Create(order).Error)

	err := f.fulfillment.ConfirmOrder(order.ID)
	require.Error(t, err)
	assert.Equal(t, models.StatusForecast, f.reload(t, order.ID).Status)
}

func TestSubStatusTransitions_ForwardAndBack(t *testing.T) {
	f := newFulfillmentFixture(t)
	client := f.createClient(t, 7)
	order := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusPending)

	require.NoError(t, f.fulfillment.PickOrder(order.ID))
	assert.Equal(t, models.SubStatusPicked, f.reload(t, order.ID).SubStatus)

	require.NoError(t, f.fulfillment.UndoPick(order.ID))
	assert.Equal(t, models.SubStatusPending, f.reload(t, order.ID).SubStatus)

	require.NoError(t, f.fulfillment.PickOrder(order.ID))
	require.NoError(t, f.fulfillment.DispatchOrder(order.ID))
	assert.Equal(t, models.SubStatusDispatched, f.reload(t, order.ID).SubStatus)

	require.NoError(t, f.fulfillment.ReturnToPicking(order.ID))
	assert.Equal(t, models.SubStatusPicked, f.reload(t, order.ID).SubStatus)
}

func TestPickOrder_WrongSubStatusRejected(t *testing.T) {
	f := newFulfillmentFixture(t)
	client := f.createClient(t, 7)
	order := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusPicked)

	err := f.fulfillment.PickOrder(order.ID)

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.SubStatusPicked, f.reload(t, order.ID).SubStatus)
}

func TestConfirmDelivery_RollsForwardByPeriodicity(t *testing.T) {
	f := newFulfillmentFixture(t)
	seedStandardMix(t, f.db)
	seedStock(t, f.db, 1, map[uint]int64{1: 500, 2: 200, 3: 150})
	client := f.createClient(t, 7)
	order := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusDispatched)

	require.NoError(t, f.fulfillment.ConfirmDelivery(order.ID))

	got := f.reload(t, order.ID)
	assert.True(t, got.ScheduledDate.Equal(date(2024, time.March, 11)))
	assert.Equal(t, models.StatusForecast, got.Status)
	assert.Equal(t, models.SubStatusPending, got.SubStatus)

	movements, err := f.movement.GetByReference(models.ReferenceDelivery, order.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 3)
}

func TestConfirmDelivery_PreservesCustomItems(t *testing.T) {
	f := newFulfillmentFixture(t)
	seedStandardMix(t, f.db)
	seedStock(t, f.db, 1, map[uint]int64{1: 500, 3: 150})
	client := f.createClient(t, 7)
	order := &models.Order{
		ClientID:      client.ID,
		ScheduledDate: date(2024, time.March, 4),
		TotalQuantity: 60,
		MixType:       models.MixCustom,
		Status:        models.StatusScheduled,
		SubStatus:     models.SubStatusDispatched,
		CustomItems: []models.OrderItem{
			{ProductName: "Traditional", Quantity: 40},
			{ProductName: "Sweet", Quantity: 20},
		},
	}
	require.NoError(t, f.db.Create(order).Error)

	require.NoError(t, f.fulfillment.ConfirmDelivery(order.ID))

	got := f.reload(t, order.ID)
	assert.Equal(t, models.MixCustom, got.MixType)
	require.Len(t, got.CustomItems, 2)
	assert.Equal(t, "Traditional", got.CustomItems[0].ProductName)
	assert.Equal(t, 40, got.CustomItems[0].Quantity)
}

func TestConfirmDelivery_ShortfallLeavesOrderUntouched(t *testing.T) {
	f := newFulfillmentFixture(t)
	seedStandardMix(t, f.db)
	seedStock(t, f.db, 1, map[uint]int64{1: 10, 2: 10, 3: 10})
	client := f.createClient(t, 7)
	order := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusDispatched)

	err := f.fulfillment.ConfirmDelivery(order.ID)

	var shortfall *ShortfallError
	require.ErrorAs(t, err, &shortfall)

	got := f.reload(t, order.ID)
	assert.Equal(t, models.StatusScheduled, got.Status)
	assert.Equal(t, models.SubStatusDispatched, got.SubStatus)
	assert.True(t, got.ScheduledDate.Equal(date(2024, time.March, 4)))
}

func TestConfirmDelivery_WrongStateRejected(t *testing.T) {
	f := newFulfillmentFixture(t)
	seedStandardMix(t, f.db)
	client := f.createClient(t, 7)
	order := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusPicked)

	err := f.fulfillment.ConfirmDelivery(order.ID)

	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestConfirmReturn_MovesToNextBusinessDay(t *testing.T) {
	f := newFulfillmentFixture(t)
	seedStandardMix(t, f.db)
	client := f.createClient(t, 7)
	// Friday: the next business day is Monday, not the weekend.
	order := f.createOrderInState(t, client.ID, date(2024, time.March, 8), models.StatusScheduled, models.SubStatusDispatched)

	require.NoError(t, f.fulfillment.ConfirmReturn(order.ID))

	got := f.reload(t, order.ID)
	assert.True(t, got.ScheduledDate.Equal(date(2024, time.March, 11)))
	assert.Equal(t, models.StatusForecast, got.Status)

	movements, err := f.movement.GetByReference(models.ReferenceReturn, order.ID)
	require.NoError(t, err)
	require.Len(t, movements, 3)
	assert.Equal(t, models.MovementCredit, movements[0].Kind)
}

func TestPickOrders_SkipsWrongPreStateSilently(t *testing.T) {
	f := newFulfillmentFixture(t)
	client := f.createClient(t, 7)
	pending1 := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusPending)
	pending2 := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusPending)
	picked := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusPicked)
	forecast := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusForecast, models.SubStatusPending)

	outcome, err := f.fulfillment.PickOrders([]uint{pending1.ID, pending2.ID, picked.ID, forecast.ID, 9999})
	require.NoError(t, err)

	assert.Equal(t, []uint{pending1.ID, pending2.ID}, outcome.Applied)
	assert.Equal(t, []uint{picked.ID, forecast.ID, 9999}, outcome.Skipped)
	assert.Empty(t, outcome.Failed)

	assert.Equal(t, models.SubStatusPicked, f.reload(t, pending1.ID).SubStatus)
	assert.Equal(t, models.SubStatusPicked, f.reload(t, pending2.ID).SubStatus)
	assert.Equal(t, models.StatusForecast, f.reload(t, forecast.ID).Status)
}

func TestConfirmDeliveries_IndependentOutcomes(t *testing.T) {
	f := newFulfillmentFixture(t)
	seedStandardMix(t, f.db)
	seedStock(t, f.db, 1, map[uint]int64{1: 500, 2: 200, 3: 150})
	client := f.createClient(t, 7)
	dispatched := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusDispatched)
	pending := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusPending)

	outcome, err := f.fulfillment.ConfirmDeliveries([]uint{dispatched.ID, pending.ID})
	require.NoError(t, err)

	assert.Equal(t, []uint{dispatched.ID}, outcome.Applied)
	assert.Equal(t, []uint{pending.ID}, outcome.Skipped)
	assert.Equal(t, models.StatusForecast, f.reload(t, dispatched.ID).Status)
	assert.Equal(t, models.SubStatusPending, f.reload(t, pending.ID).SubStatus)
}

// failingOrderRepo delegates reads but fails every fulfillment update.
type failingOrderRepo struct {
	repository.OrderRepository
}

func (r *failingOrderRepo) UpdateFulfillment(order *models.Order) error {
	return errors.New("connection reset")
}

func TestTransition_RevertsOnPersistenceFailure(t *testing.T) {
	f := newFulfillmentFixture(t)
	client := f.createClient(t, 7)
	order := f.createOrderInState(t, client.ID, date(2024, time.March, 4), models.StatusScheduled, models.SubStatusPending)

	broken := NewFulfillmentService(&failingOrderRepo{OrderRepository: f.orders}, f.clients, f.service, f.notifier)
	err := broken.PickOrder(order.ID)

	var persistence *PersistenceError
	require.ErrorAs(t, err, &persistence)

	got := f.reload(t, order.ID)
	assert.Equal(t, models.SubStatusPending, got.SubStatus)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFulfillmentFixture(t)

	_, err := f.fulfillment.GetOrder(42)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
