package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StockCache — кэш доступного остатка для витрины. Ошибки Redis не
// всплывают к вызывающему: промах кэша всегда безопаснее отказа.
type StockCache struct {
	client *redis.Client
	log    *zap.Logger
	ttl    time.Duration
}

func NewStockCache(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*StockCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis подключен", zap.String("addr", addr))

	return &StockCache{client: rdb, log: log, ttl: ttl}, nil
}

func stockKey(productID uuid.UUID) string {
	return fmt.Sprintf("stock:available:%s", productID)
}

func (c *StockCache) GetAvailable(ctx context.Context, productID uuid.UUID) (int64, bool) {
	raw, err := c.client.Get(ctx, stockKey(productID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("redis get failed", zap.Error(err))
		}
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (c *StockCache) SetAvailable(ctx context.Context, productID uuid.UUID, available int64) {
	if err := c.client.Set(ctx, stockKey(productID), available, c.ttl).Err(); err != nil {
		c.log.Warn("redis set failed", zap.Error(err))
	}
}

func (c *StockCache) Invalidate(ctx context.Context, productID uuid.UUID) {
	if err := c.client.Del(ctx, stockKey(productID)).Err(); err != nil {
		c.log.Warn("redis del failed", zap.Error(err))
	}
}

func (c *StockCache) Close() error {
	return c.client.Close()
}
