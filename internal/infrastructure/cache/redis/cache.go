// internal/infrastructure/cache/redis/cache.go
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// KeyValue - подмножество команд redis.Cmdable, которое нужно кэшу.
// Зеркало только пишет, чтение состояния обратно не предусмотрено.
type KeyValue interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type Cache struct {
	client KeyValue
	prefix string
}

func NewCache(client KeyValue, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Key возвращает полный ключ с префиксом
func (c *Cache) Key(key string) string {
	return c.prefix + key
}

// Set сериализует значение в JSON и пишет с TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.Key(key), data, ttl).Err()
}
