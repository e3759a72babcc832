package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const balanceTTL = 5 * time.Minute

// BalanceCache implements ports.BalanceCache using Redis. The member points
// page is the hottest read in the forum; the ledger invalidates entries after
// every commit, the TTL only bounds staleness if an invalidation is lost.
type BalanceCache struct {
	client *goredis.Client
	prefix string
}

// NewBalanceCache creates a new Redis-backed balance cache.
func NewBalanceCache(client *goredis.Client) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "balance:",
	}
}

// Get retrieves a cached balance. The second return is false on a miss.
func (c *BalanceCache) Get(ctx context.Context, accountID string) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+accountID).Result()
	if err != nil {
		if err == goredis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis balance get: %w", err)
	}
	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached balance: %w", err)
	}
	return balance, true, nil
}

// Set stores a balance with the cache TTL.
func (c *BalanceCache) Set(ctx context.Context, accountID string, balance int64) error {
	err := c.client.Set(ctx, c.prefix+accountID, strconv.FormatInt(balance, 10), balanceTTL).Err()
	if err != nil {
		return fmt.Errorf("redis balance set: %w", err)
	}
	return nil
}

// Invalidate drops cached balances for the given accounts.
func (c *BalanceCache) Invalidate(ctx context.Context, accountIDs ...string) error {
	if len(accountIDs) == 0 {
		return nil
	}
	keys := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		keys[i] = c.prefix + id
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis balance invalidate: %w", err)
	}
	return nil
}
