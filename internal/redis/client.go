package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Product balance caching. Balances are ledger-derived and expensive to
// recompute, so the balance gateway keeps a short-lived copy here. A cached
// value may be stale by the time a debit is attempted; the debit path
// invalidates the key after every write.

func (c *Client) SetProductBalance(productID uint, balance int64, ttl time.Duration) error {
	ctx := context.Background()
	key := fmt.Sprintf("product_balance:%d", productID)
	return c.rdb.Set(ctx, key, balance, ttl).Err()
}

func (c *Client) GetProductBalance(productID uint) (int64, bool, error) {
	ctx := context.Background()
	key := fmt.Sprintf("product_balance:%d", productID)
	val, err := c.rdb.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get product balance: %w", err)
	}
	return val, true, nil
}

func (c *Client) InvalidateProductBalance(productID uint) error {
	ctx := context.Background()
	key := fmt.Sprintf("product_balance:%d", productID)
	return c.rdb.Del(ctx, key).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
