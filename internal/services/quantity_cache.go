package services

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"delivery_manager/internal/models"

	"golang.org/x/sync/singleflight"
)

const (
	quantityCacheTTL   = 2 * time.Minute
	quantityCacheSweep = 60 * time.Second
)

// BatchDemand is the cached result of resolving one order batch: per-order
// allocations plus the per-product aggregate.
type BatchDemand struct {
	PerOrder map[uint][]Allocation
	Total    map[uint]int64
}

type cacheEntry struct {
	demand    *BatchDemand
	expiresAt time.Time
}

// QuantityCache memoizes batch demand computations. Keys are derived from
// batch content, not ordering, so two calls over the same orders hit the same
// entry. Concurrent misses on one key share a single computation through the
// singleflight group.
type QuantityCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
	ttl     time.Duration
	stop    chan struct{}
	once    sync.Once
}

func NewQuantityCache() *QuantityCache {
	c := &QuantityCache{
		entries: make(map[string]cacheEntry),
		ttl:     quantityCacheTTL,
		stop:    make(chan struct{}),
	}
	go c.sweep(quantityCacheSweep)
	return c
}

// BatchKey hashes the sorted (orderID, totalQuantity, mixType) tuples of a
// batch. Reordering the input does not change the key.
func BatchKey(orders []models.Order) string {
	tuples := make([]string, 0, len(orders))
	for _, o := range orders {
		tuples = append(tuples, fmt.Sprintf("%d:%d:%s", o.ID, o.TotalQuantity, o.MixType))
	}
	sort.Strings(tuples)

	h := fnv.New64a()
	for _, t := range tuples {
		h.Write([]byte(t))
		h.Write([]byte{'|'})
	}
	return fmt.Sprintf("batch:%x", h.Sum64())
}

// GetOrCompute returns the cached demand for key, computing it at most once
// across concurrent callers.
func (c *QuantityCache) GetOrCompute(key string, compute func() (*BatchDemand, error)) (*BatchDemand, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.demand, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have stored the
		// entry between our miss and the group admitting us.
		c.mu.RLock()
		entry, ok := c.entries[key]
		c.mu.RUnlock()
		if ok && time.Now().Before(entry.expiresAt) {
			return entry.demand, nil
		}

		demand, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{demand: demand, expiresAt: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return demand, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*BatchDemand), nil
}

// InvalidateAll drops every entry. Called after any stock-affecting write,
// since cached demand may feed a balance comparison.
func (c *QuantityCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Close stops the background sweeper.
func (c *QuantityCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *QuantityCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
