// Package mirror publishes committed catalog state to Redis for readers
// outside the ledger process (dashboards, pickers, reorder jobs).
package mirror

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/warp/stock-ledger/inventory"
)

const (
	stockKeyPrefix   = "stock:"
	productKeyPrefix = "product:"
	lowStockKey      = "stock:low"
)

// RedisMirror implements inventory.Observer. Every committed change is
// written in one MULTI/EXEC so readers never see a product hash that
// disagrees with its stock key.
type RedisMirror struct {
	client *redis.Client
}

// NewRedisMirror connects to the Redis server at redisURL.
func NewRedisMirror(redisURL string) (*RedisMirror, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisMirror{client: client}, nil
}

// NewRedisMirrorWithClient creates a mirror from an existing client.
func NewRedisMirrorWithClient(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client}
}

func (m *RedisMirror) Close() error {
	return m.client.Close()
}

func stockKey(id inventory.ProductID) string {
	return stockKeyPrefix + strconv.FormatInt(int64(id), 10)
}

func productKey(id inventory.ProductID) string {
	return productKeyPrefix + strconv.FormatInt(int64(id), 10)
}

func member(id inventory.ProductID) string {
	return strconv.FormatInt(int64(id), 10)
}

// Sync writes the updated products and drops the removed ones.
func (m *RedisMirror) Sync(ctx context.Context, change inventory.Change) error {
	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range change.Updated {
			pipe.Set(ctx, stockKey(p.ID), p.Stock, 0)
			pipe.HSet(ctx, productKey(p.ID), map[string]any{
				"code":         p.Code,
				"name":         p.Name,
				"category":     p.Category,
				"stock":        p.Stock,
				"safety_stock": p.SafetyStock,
			})
			if p.IsLow() {
				pipe.SAdd(ctx, lowStockKey, member(p.ID))
			} else {
				pipe.SRem(ctx, lowStockKey, member(p.ID))
			}
		}
		for _, id := range change.Removed {
			pipe.Del(ctx, stockKey(id), productKey(id))
			pipe.SRem(ctx, lowStockKey, member(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("mirror sync: %w", err)
	}
	return nil
}

// Stock returns the mirrored stock of a product. ok is false when the
// product has never been mirrored or was removed.
func (m *RedisMirror) Stock(ctx context.Context, id inventory.ProductID) (stock int, ok bool, err error) {
	stock, err = m.client.Get(ctx, stockKey(id)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get stock %d: %w", id, err)
	}
	return stock, true, nil
}

// LowStock returns the ids currently below their safety threshold, ascending.
func (m *RedisMirror) LowStock(ctx context.Context) ([]inventory.ProductID, error) {
	members, err := m.client.SMembers(ctx, lowStockKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	ids := make([]inventory.ProductID, 0, len(members))
	for _, s := range members {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("low stock member %q: %w", s, err)
		}
		ids = append(ids, inventory.ProductID(n))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
