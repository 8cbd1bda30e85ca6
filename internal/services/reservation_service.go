package services

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"delivery_manager/internal/events"
	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"

	"gorm.io/gorm"
)

// ReservationService authorizes stock-affecting operations. A batch either
// passes completely or is rejected completely; no partial debit ever happens.
type ReservationService interface {
	ValidateAndReserve(orders []models.Order, kind models.OperationKind) (map[uint][]Allocation, error)
	ResolveBatchDemand(orders []models.Order) (*BatchDemand, error)
}

type reservationService struct {
	db           *gorm.DB
	movementRepo repository.StockMovementRepository
	mixRepo      repository.MixConfigRepository
	gateway      BalanceGateway
	cache        *QuantityCache
	deliveryLog  DeliveryLogService
	notifier     events.Notifier
}

func NewReservationService(
	db *gorm.DB,
	movementRepo repository.StockMovementRepository,
	mixRepo repository.MixConfigRepository,
	gateway BalanceGateway,
	cache *QuantityCache,
	deliveryLog DeliveryLogService,
	notifier events.Notifier,
) ReservationService {
	return &reservationService{
		db:           db,
		movementRepo: movementRepo,
		mixRepo:      mixRepo,
		gateway:      gateway,
		cache:        cache,
		deliveryLog:  deliveryLog,
		notifier:     notifier,
	}
}

// ValidateAndReserve runs the full authorization pipeline for a batch:
// duplicate guard, demand resolution, balance check, then the transactional
// debit-and-record write. On success it returns each order's resolved items.
//
// Returns write credit movements instead of debits; since credits cannot
// run short, the balance check applies to deliveries only.
func (s *reservationService) ValidateAndReserve(orders []models.Order, kind models.OperationKind) (map[uint][]Allocation, error) {
	if len(orders) == 0 {
		return map[uint][]Allocation{}, nil
	}

	refKind := models.ReferenceDelivery
	if kind == models.OperationReturn {
		refKind = models.ReferenceReturn
	}

	// Duplicate guard before anything stock-affecting. The unique index on
	// the movement table is the authoritative check; this early read just
	// produces a friendly error without burning a transaction.
	for _, order := range orders {
		exists, err := s.movementRepo.ExistsByReference(refKind, order.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &DuplicateOperationError{OrderID: order.ID, Kind: kind}
		}
	}

	demand, err := s.ResolveBatchDemand(orders)
	if err != nil {
		return nil, err
	}

	if kind == models.OperationDelivery {
		if err := s.checkBalances(demand.Total); err != nil {
			return nil, err
		}
	}

	if err := s.execute(orders, demand, kind, refKind); err != nil {
		return nil, err
	}

	for productID := range demand.Total {
		s.gateway.Invalidate(productID)
	}
	s.cache.InvalidateAll()

	return demand.PerOrder, nil
}

// ResolveBatchDemand computes per-order and aggregate demand for a batch,
// memoized by batch content.
func (s *reservationService) ResolveBatchDemand(orders []models.Order) (*BatchDemand, error) {
	key := BatchKey(orders)
	return s.cache.GetOrCompute(key, func() (*BatchDemand, error) {
		return s.computeBatchDemand(orders)
	})
}

func (s *reservationService) computeBatchDemand(orders []models.Order) (*BatchDemand, error) {
	configs, err := s.mixRepo.GetActive()
	if err != nil {
		return nil, err
	}
	mix := MixLinesFromConfig(configs)
	nameIndex := make(map[string]MixLine, len(mix))
	for _, line := range mix {
		nameIndex[strings.ToLower(line.ProductName)] = line
	}

	demand := &BatchDemand{
		PerOrder: make(map[uint][]Allocation, len(orders)),
		Total:    make(map[uint]int64),
	}

	for _, order := range orders {
		var allocations []Allocation
		var err error
		switch {
		case order.MixType == models.MixCustom && len(order.CustomItems) == 0:
			// A custom order without an item list yet gets the even split
			// across the active products.
			allocations = AllocateEven(order.TotalQuantity, mix)
		case order.MixType == models.MixCustom:
			items := make([]Allocation, 0, len(order.CustomItems))
			for _, item := range order.CustomItems {
				line, ok := nameIndex[strings.ToLower(item.ProductName)]
				if !ok {
					// Unresolvable product reference, skipped by contract.
					continue
				}
				items = append(items, Allocation{
					ProductID:   line.ProductID,
					ProductName: line.ProductName,
					Quantity:    item.Quantity,
				})
			}
			allocations, err = ResolveDemand(order.TotalQuantity, CustomDemand{Items: items})
		default:
			allocations, err = ResolveDemand(order.TotalQuantity, StandardDemand{Mix: mix})
		}
		if err != nil {
			var cfgErr *ConfigurationError
			if errors.As(err, &cfgErr) {
				// Degraded to the even-split fallback; report and continue.
				log.Printf("Warning: %v (falling back to even distribution)", cfgErr)
				s.notify(events.Event{
					Type:       events.ConfigInvalid,
					OrderID:    order.ID,
					ClientID:   order.ClientID,
					Detail:     cfgErr.Error(),
					OccurredAt: time.Now(),
				})
			} else {
				return nil, err
			}
		}

		demand.PerOrder[order.ID] = allocations
		for _, a := range allocations {
			demand.Total[a.ProductID] += int64(a.Quantity)
		}
	}
	return demand, nil
}

// checkBalances compares aggregate demand against current balances and
// collects every shortfall before rejecting, so the caller can present all
// problems at once.
func (s *reservationService) checkBalances(total map[uint]int64) error {
	productIDs := make([]uint, 0, len(total))
	for productID := range total {
		productIDs = append(productIDs, productID)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	var shortfalls []ShortfallLine
	for _, productID := range productIDs {
		needed := total[productID]
		if needed <= 0 {
			continue
		}
		available, err := s.gateway.GetBalance(productID)
		if err != nil {
			return err
		}
		if available < needed {
			shortfalls = append(shortfalls, ShortfallLine{
				ProductID:   productID,
				ProductName: s.productName(productID),
				Needed:      needed,
				Available:   available,
				Missing:     needed - available,
			})
		}
	}

	if len(shortfalls) > 0 {
		return &ShortfallError{Lines: shortfalls}
	}
	return nil
}

// execute writes the stock movements and the history records of the whole
// batch inside one transaction, so a failed history write rolls the debits
// back with it.
func (s *reservationService) execute(orders []models.Order, demand *BatchDemand, kind models.OperationKind, refKind models.ReferenceKind) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, order := range orders {
			allocations := demand.PerOrder[order.ID]
			for _, a := range allocations {
				if a.Quantity <= 0 {
					continue
				}
				movement := &models.StockMovement{
					ProductID:     a.ProductID,
					ReferenceKind: refKind,
					ReferenceID:   order.ID,
				}
				if kind == models.OperationDelivery {
					movement.Kind = models.MovementDebit
					movement.Quantity = -int64(a.Quantity)
				} else {
					movement.Kind = models.MovementCredit
					movement.Quantity = int64(a.Quantity)
				}
				if err := s.movementRepo.CreateInTx(tx, movement); err != nil {
					return err
				}
			}

			if _, err := s.deliveryLog.Record(tx, order.ClientID, order.ID, kind, order.TotalQuantity, allocations, order.SubStatus); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			// Another confirmation won the race; the unique reference index
			// turned it into a no-op here.
			return &DuplicateOperationError{OrderID: orders[0].ID, Kind: kind}
		}
		return &PersistenceError{Op: "stock reservation", Err: err}
	}
	return nil
}

func (s *reservationService) productName(productID uint) string {
	config, err := s.mixRepo.GetByProductID(productID)
	if err != nil {
		return ""
	}
	return config.ProductName
}

func (s *reservationService) notify(event events.Event) {
	if s.notifier != nil {
		s.notifier.Notify(event)
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
