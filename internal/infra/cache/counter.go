package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Counter оконные счетчики abuse guard в Redis
type Counter struct {
	client redis.UniversalClient
	prefix string
}

// NewCounter создает счетчик; prefix отделяет ключи сервиса
func NewCounter(client redis.UniversalClient, prefix string) *Counter {
	return &Counter{client: client, prefix: prefix}
}

// Incr INCR и EXPIRE NX в одной транзакции MULTI: окно начинается с первого
// увеличения и не продлевается последующими. Требует Redis 7.0+.
func (c *Counter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := c.prefix + "counter:" + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		pipe.ExpireNX(ctx, fullKey, window)
		ttl = pipe.PTTL(ctx, fullKey)
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: Incr - exec: %v", ErrCacheUnavailable, err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}

// Slide скользящее окно на sorted set: событие добавляется с весом at в мс,
// события старше at-window удаляются, ZCARD дает число оставшихся.
// Все в одной транзакции MULTI, ключ живет не дольше окна.
func (c *Counter) Slide(ctx context.Context, key string, window time.Duration, at time.Time) (int64, error) {
	fullKey := c.prefix + "window:" + key
	cutoff := strconv.FormatInt(at.Add(-window).UnixMilli(), 10)

	var card *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, fullKey, "-inf", cutoff)
		pipe.ZAdd(ctx, fullKey, redis.Z{Score: float64(at.UnixMilli()), Member: uuid.NewString()})
		card = pipe.ZCard(ctx, fullKey)
		pipe.PExpire(ctx, fullKey, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: Slide - exec: %v", ErrCacheUnavailable, err)
	}
	return card.Val(), nil
}
