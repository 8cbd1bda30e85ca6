package services

import (
	"fmt"

	"delivery_manager/internal/models"
	"delivery_manager/internal/repository"
)

// StockService covers stock intake and balance queries. Debits happen only
// through the reservation pipeline, never here.
type StockService interface {
	RecordProductionEntry(productID, batchID uint, quantity int64) error
	GetBalance(productID uint) (int64, error)
	GetLedger(productID uint) ([]models.StockMovement, error)
}

type stockService struct {
	movementRepo repository.StockMovementRepository
	gateway      BalanceGateway
}

func NewStockService(movementRepo repository.StockMovementRepository, gateway BalanceGateway) StockService {
	return &stockService{movementRepo: movementRepo, gateway: gateway}
}

// RecordProductionEntry credits finished goods from a production batch. The
// batch id doubles as the movement reference, so loading the same batch twice
// is rejected by the ledger's unique reference index.
func (s *stockService) RecordProductionEntry(productID, batchID uint, quantity int64) error {
	if quantity <= 0 {
		return fmt.Errorf("production quantity must be positive")
	}
	movement := &models.StockMovement{
		ProductID:     productID,
		Kind:          models.MovementCredit,
		Quantity:      quantity,
		ReferenceKind: models.ReferenceProduction,
		ReferenceID:   batchID,
	}
	if err := s.movementRepo.Create(movement); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("production batch %d already recorded for product %d", batchID, productID)
		}
		return err
	}
	s.gateway.Invalidate(productID)
	return nil
}

func (s *stockService) GetBalance(productID uint) (int64, error) {
	return s.gateway.GetBalance(productID)
}

func (s *stockService) GetLedger(productID uint) ([]models.StockMovement, error) {
	return s.movementRepo.GetByProductID(productID)
}
