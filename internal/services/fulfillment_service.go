package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"delivery_manager/internal/events"
	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"
)

// batchConcurrency bounds how many per-order operations a batch runs at once.
const batchConcurrency = 8

// BatchOutcome reports a batch transition: orders actually transitioned,
// orders silently skipped for not being in the required pre-state, and
// orders whose individual operation failed.
type BatchOutcome struct {
	Applied []uint          `json:"applied"`
	Skipped []uint          `json:"skipped"`
	Failed  map[uint]string `json:"failed,omitempty"`
}

// FulfillmentService drives an order through its lifecycle:
// to_schedule -> forecast -> scheduled, with the pending/picked/dispatched
// sub-status inside scheduled, and back to forecast after each confirmed
// delivery or return.
type FulfillmentService interface {
	CreateOrder(order *models.Order) error
	GetOrder(id uint) (*models.Order, error)
	GetOrdersByStatus(status models.OrderStatus) ([]models.Order, error)
	GetOrdersByClient(clientID uint) ([]models.Order, error)

	ScheduleOrder(orderID uint, date time.Time, target models.OrderStatus) error
	ConfirmOrder(orderID uint) error
	PickOrder(orderID uint) error
	UndoPick(orderID uint) error
	DispatchOrder(orderID uint) error
	ReturnToPicking(orderID uint) error
	ConfirmDelivery(orderID uint) error
	ConfirmReturn(orderID uint) error

	PickOrders(ids []uint) (*BatchOutcome, error)
	DispatchOrders(ids []uint) (*BatchOutcome, error)
	ConfirmDeliveries(ids []uint) (*BatchOutcome, error)
	ConfirmReturns(ids []uint) (*BatchOutcome, error)
}

type fulfillmentService struct {
	orderRepo   repository.OrderRepository
	clientRepo  repository.ClientRepository
	reservation ReservationService
	notifier    events.Notifier
}

func NewFulfillmentService(
	orderRepo repository.OrderRepository,
	clientRepo repository.ClientRepository,
	reservation ReservationService,
	notifier events.Notifier,
) FulfillmentService {
	return &fulfillmentService{
		orderRepo:   orderRepo,
		clientRepo:  clientRepo,
		reservation: reservation,
		notifier:    notifier,
	}
}

// transitionToken captures the exact fields a transition may touch, so a
// failed persistence write is compensated by restoring them, nothing more.
// The optimistic mutation happens between begin and commit.
type transitionToken struct {
	order         *models.Order
	prevDate      time.Time
	prevStatus    models.OrderStatus
	prevSubStatus models.OrderSubStatus
}

func beginTransition(order *models.Order) *transitionToken {
	return &transitionToken{
		order:         order,
		prevDate:      order.ScheduledDate,
		prevStatus:    order.Status,
		prevSubStatus: order.SubStatus,
	}
}

func (t *transitionToken) revert() {
	t.order.ScheduledDate = t.prevDate
	t.order.Status = t.prevStatus
	t.order.SubStatus = t.prevSubStatus
}

// commit persists the mutated order; on failure the mutation is reverted and
// the error surfaces as a PersistenceError.
func (s *fulfillmentService) commit(token *transitionToken, op string) error {
	if err := s.orderRepo.UpdateFulfillment(token.order); err != nil {
		token.revert()
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}

func (s *fulfillmentService) CreateOrder(order *models.Order) error {
	if _, err := s.clientRepo.GetByID(order.ClientID); err != nil {
		return fmt.Errorf("client %d not found: %w", order.ClientID, err)
	}
	if order.TotalQuantity < 0 {
		return fmt.Errorf("total quantity must not be negative")
	}
	if order.MixType == "" {
		order.MixType = models.MixStandard
	}
	order.Status = models.StatusToSchedule
	order.SubStatus = models.SubStatusPending
	return s.orderRepo.Create(order)
}

func (s *fulfillmentService) GetOrder(id uint) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

func (s *fulfillmentService) GetOrdersByStatus(status models.OrderStatus) ([]models.Order, error) {
	return s.orderRepo.GetByStatus(status)
}

func (s *fulfillmentService) GetOrdersByClient(clientID uint) ([]models.Order, error) {
	return s.orderRepo.GetByClientID(clientID)
}

// ScheduleOrder assigns a date to an unscheduled order, moving it to either
// forecast or directly to scheduled.
func (s *fulfillmentService) ScheduleOrder(orderID uint, date time.Time, target models.OrderStatus) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order.Status != models.StatusToSchedule {
		return &InvalidTransitionError{OrderID: orderID, From: string(order.Status), Action: "schedule"}
	}
	if target != models.StatusForecast && target != models.StatusScheduled {
		return fmt.Errorf("invalid schedule target %q", target)
	}
	if target == models.StatusScheduled {
		if err := order.ValidateForConfirm(); err != nil {
			return err
		}
	}

	token := beginTransition(order)
	order.ScheduledDate = date
	order.Status = target
	order.SubStatus = models.SubStatusPending
	if err := s.commit(token, "schedule"); err != nil {
		return err
	}
	s.publish(events.OrderScheduled, order, "")
	return nil
}

// ConfirmOrder promotes a forecast order into the scheduled pipeline. Date,
// total quantity, mix type and custom items all carry over untouched.
func (s *fulfillmentService) ConfirmOrder(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order.Status != models.StatusForecast {
		return &InvalidTransitionError{OrderID: orderID, From: string(order.Status), Action: "confirm"}
	}
	if err := order.ValidateForConfirm(); err != nil {
		return err
	}

	token := beginTransition(order)
	order.Status = models.StatusScheduled
	order.SubStatus = models.SubStatusPending
	if err := s.commit(token, "confirm"); err != nil {
		return err
	}
	s.publish(events.OrderConfirmed, order, "")
	return nil
}

func (s *fulfillmentService) PickOrder(orderID uint) error {
	return s.moveSubStatus(orderID, "pick", models.SubStatusPending, models.SubStatusPicked, events.OrderPicked)
}

func (s *fulfillmentService) UndoPick(orderID uint) error {
	return s.moveSubStatus(orderID, "undo pick", models.SubStatusPicked, models.SubStatusPending, events.OrderPickUndone)
}

func (s *fulfillmentService) DispatchOrder(orderID uint) error {
	return s.moveSubStatus(orderID, "dispatch", models.SubStatusPicked, models.SubStatusDispatched, events.OrderDispatched)
}

func (s *fulfillmentService) ReturnToPicking(orderID uint) error {
	return s.moveSubStatus(orderID, "return to picking", models.SubStatusDispatched, models.SubStatusPicked, events.OrderReturnedToPicking)
}

// moveSubStatus handles the reversible, stock-neutral sub-status hops inside
// the scheduled state.
func (s *fulfillmentService) moveSubStatus(orderID uint, action string, from, to models.OrderSubStatus, eventType events.EventType) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order.Status != models.StatusScheduled || order.SubStatus != from {
		return &InvalidTransitionError{
			OrderID: orderID,
			From:    fmt.Sprintf("%s/%s", order.Status, order.SubStatus),
			Action:  action,
		}
	}

	token := beginTransition(order)
	order.SubStatus = to
	if err := s.commit(token, action); err != nil {
		return err
	}
	s.publish(eventType, order, "")
	return nil
}

// ConfirmDelivery closes one reposition cycle: the validator authorizes and
// debits the stock, then the order rolls forward to its next reposition date
// (previous scheduled date plus the client's periodicity, regardless of when
// the confirmation actually happens) and returns to forecast/pending with
// its mix configuration intact.
func (s *fulfillmentService) ConfirmDelivery(orderID uint) error {
	return s.confirmOperation(orderID, models.OperationDelivery)
}

// ConfirmReturn closes a cycle that came back: history is recorded, the
// returned goods are credited back to stock, and the order is rescheduled to
// the next business day after its previous date.
func (s *fulfillmentService) ConfirmReturn(orderID uint) error {
	return s.confirmOperation(orderID, models.OperationReturn)
}

func (s *fulfillmentService) confirmOperation(orderID uint, kind models.OperationKind) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	action := "confirm delivery"
	if kind == models.OperationReturn {
		action = "confirm return"
	}
	if order.Status != models.StatusScheduled || order.SubStatus != models.SubStatusDispatched {
		return &InvalidTransitionError{
			OrderID: orderID,
			From:    fmt.Sprintf("%s/%s", order.Status, order.SubStatus),
			Action:  action,
		}
	}

	client, err := s.clientRepo.GetByID(order.ClientID)
	if err != nil {
		return fmt.Errorf("client %d not found: %w", order.ClientID, err)
	}

	// Authorization and the stock/history writes happen before the order
	// itself is touched: a rejection leaves the order dispatched.
	if _, err := s.reservation.ValidateAndReserve([]models.Order{*order}, kind); err != nil {
		return err
	}

	token := beginTransition(order)
	if kind == models.OperationDelivery {
		order.ScheduledDate = NextRepositionDate(token.prevDate, client.PeriodicityDays)
	} else {
		order.ScheduledDate = NextBusinessDay(token.prevDate)
	}
	order.Status = models.StatusForecast
	order.SubStatus = models.SubStatusPending
	if err := s.commit(token, action); err != nil {
		return err
	}

	eventType := events.DeliveryConfirmed
	if kind == models.OperationReturn {
		eventType = events.ReturnConfirmed
	}
	s.publish(eventType, order, "")
	return nil
}

func (s *fulfillmentService) PickOrders(ids []uint) (*BatchOutcome, error) {
	return s.batchTransition(ids, models.SubStatusPending, s.PickOrder)
}

func (s *fulfillmentService) DispatchOrders(ids []uint) (*BatchOutcome, error) {
	return s.batchTransition(ids, models.SubStatusPicked, s.DispatchOrder)
}

func (s *fulfillmentService) ConfirmDeliveries(ids []uint) (*BatchOutcome, error) {
	return s.batchTransition(ids, models.SubStatusDispatched, s.ConfirmDelivery)
}

func (s *fulfillmentService) ConfirmReturns(ids []uint) (*BatchOutcome, error) {
	return s.batchTransition(ids, models.SubStatusDispatched, s.ConfirmReturn)
}

// batchTransition applies one per-order operation to every order currently in
// the required pre-state. Orders in any other state are skipped silently, not
// errored. Eligible orders run concurrently under a bounded semaphore; each
// order's outcome is independent of the others.
func (s *fulfillmentService) batchTransition(ids []uint, required models.OrderSubStatus, apply func(orderID uint) error) (*BatchOutcome, error) {
	orders, err := s.orderRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	found := make(map[uint]bool, len(orders))
	outcome := &BatchOutcome{Failed: make(map[uint]string)}
	eligible := make([]uint, 0, len(orders))
	for _, order := range orders {
		found[order.ID] = true
		if order.Status == models.StatusScheduled && order.SubStatus == required {
			eligible = append(eligible, order.ID)
		} else {
			outcome.Skipped = append(outcome.Skipped, order.ID)
		}
	}
	for _, id := range ids {
		if !found[id] {
			outcome.Skipped = append(outcome.Skipped, id)
		}
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, batchConcurrency)
	for _, id := range eligible {
		wg.Add(1)
		sem <- struct{}{}
		go func(orderID uint) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := apply(orderID); err != nil {
				mu.Lock()
				outcome.Failed[orderID] = err.Error()
				mu.Unlock()
				return
			}
			mu.Lock()
			outcome.Applied = append(outcome.Applied, orderID)
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	sort.Slice(outcome.Applied, func(i, j int) bool { return outcome.Applied[i] < outcome.Applied[j] })
	sort.Slice(outcome.Skipped, func(i, j int) bool { return outcome.Skipped[i] < outcome.Skipped[j] })
	return outcome, nil
}

func (s *fulfillmentService) publish(eventType events.EventType, order *models.Order, detail string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(events.Event{
		Type:       eventType,
		OrderID:    order.ID,
		ClientID:   order.ClientID,
		Status:     string(order.Status),
		SubStatus:  string(order.SubStatus),
		Detail:     detail,
		OccurredAt: time.Now(),
	})
}
