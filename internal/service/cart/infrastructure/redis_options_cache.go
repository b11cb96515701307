// internal/service/cart/infrastructure/redis_options_cache.go
package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/service/cart/domain"
)

// RedisOptionsCache 是 application.OptionsCache 的 Redis 实现。
// 只缓存展示用的履约选项快照，预订路径不读这里。
// 快照以契约 JSON 形态存储，门店顺序经由有序编解码保持不变。
type RedisOptionsCache struct {
	client *redis.Client
}

func NewRedisOptionsCache(client *redis.Client) *RedisOptionsCache {
	return &RedisOptionsCache{client: client}
}

func optionsKey(sku string) string {
	return fmt.Sprintf("cart:options:{%s}", sku)
}

func (c *RedisOptionsCache) Get(ctx context.Context, sku string) (*domain.InventorySnapshot, error) {
	raw, err := c.client.Get(ctx, optionsKey(sku)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snapshot domain.InventorySnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *RedisOptionsCache) Set(ctx context.Context, sku string, snapshot *domain.InventorySnapshot, ttl time.Duration) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, optionsKey(sku), raw, ttl).Err()
}
