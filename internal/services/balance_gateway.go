package services

import (
	"log"
	"time"

	"delivery_manager/internal/repository"
)

const defaultBalanceCacheTTL = 30 * time.Second

// BalanceCache is the slice of the Redis client the gateway needs. It is an
// interface so tests can run without a Redis instance.
type BalanceCache interface {
	SetProductBalance(productID uint, balance int64, ttl time.Duration) error
	GetProductBalance(productID uint) (int64, bool, error)
	InvalidateProductBalance(productID uint) error
}

// BalanceGateway answers the current finished-goods balance for a product.
// Balances are derived from the movement ledger, never stored, so a reading
// may already be stale by the time a debit lands.
type BalanceGateway interface {
	GetBalance(productID uint) (int64, error)
	Invalidate(productID uint)
}

type ledgerBalanceGateway struct {
	movementRepo repository.StockMovementRepository
	cache        BalanceCache
	cacheTTL     time.Duration
}

func NewBalanceGateway(movementRepo repository.StockMovementRepository, cache BalanceCache, cacheTTL time.Duration) BalanceGateway {
	if cacheTTL <= 0 {
		cacheTTL = defaultBalanceCacheTTL
	}
	return &ledgerBalanceGateway{movementRepo: movementRepo, cache: cache, cacheTTL: cacheTTL}
}

func (g *ledgerBalanceGateway) GetBalance(productID uint) (int64, error) {
	if g.cache != nil {
		if balance, ok, err := g.cache.GetProductBalance(productID); err == nil && ok {
			return balance, nil
		}
	}

	balance, err := g.movementRepo.SumByProduct(productID)
	if err != nil {
		return 0, err
	}
	if balance < 0 {
		balance = 0
	}

	if g.cache != nil {
		if err := g.cache.SetProductBalance(productID, balance, g.cacheTTL); err != nil {
			log.Printf("Warning: failed to cache balance for product %d: %v", productID, err)
		}
	}
	return balance, nil
}

func (g *ledgerBalanceGateway) Invalidate(productID uint) {
	if g.cache == nil {
		return
	}
	if err := g.cache.InvalidateProductBalance(productID); err != nil {
		log.Printf("Warning: failed to invalidate balance cache for product %d: %v", productID, err)
	}
}
