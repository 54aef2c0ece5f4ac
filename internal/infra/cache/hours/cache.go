// Package hours caches canonical venue hours in Redis.
// A Cache built with a nil client is disabled: reads miss and writes are dropped.
package hours

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-SeatReservationService/internal/domain"
)

const keyPrefix = "venue:hours:"

// Cache кэш канонических часов работы площадок
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache создает кэш. client == nil отключает кэширование
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Enabled returns true if a Redis client is configured
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetMany возвращает найденные в кэше часы и список ID, которых в кэше нет
func (c *Cache) GetMany(ctx context.Context, venueIDs []int64) (map[int64]domain.CanonicalHours, []int64, error) {
	found := make(map[int64]domain.CanonicalHours, len(venueIDs))
	if !c.Enabled() || len(venueIDs) == 0 {
		return found, venueIDs, nil
	}

	keys := make([]string, len(venueIDs))
	for i, id := range venueIDs {
		keys[i] = key(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return found, venueIDs, fmt.Errorf("%w: GetMany - mget: %v", ErrCacheRead, err)
	}

	missing := make([]int64, 0)
	for i, raw := range values {
		s, ok := raw.(string)
		if !ok {
			missing = append(missing, venueIDs[i])
			continue
		}

		var h domain.CanonicalHours
		if err := json.Unmarshal([]byte(s), &h); err != nil {
			// Битое значение считаем промахом, его перезапишет следующий SetMany
			missing = append(missing, venueIDs[i])
			continue
		}
		found[venueIDs[i]] = h
	}

	return found, missing, nil
}

// SetMany сохраняет часы работы площадок с TTL одним pipeline
func (c *Cache) SetMany(ctx context.Context, hours map[int64]domain.CanonicalHours) error {
	if !c.Enabled() || len(hours) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for id, h := range hours {
		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("%w: SetMany - marshal venue %d: %v", ErrCacheWrite, id, err)
		}
		pipe.Set(ctx, key(id), data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: SetMany - exec pipeline: %v", ErrCacheWrite, err)
	}

	return nil
}

func key(venueID int64) string {
	return keyPrefix + strconv.FormatInt(venueID, 10)
}
