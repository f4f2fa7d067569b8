package sequence

import (
	"context"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicecore/internal/clock"
	"github.com/smallbiznis/invoicecore/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const keyPrefix = "invoicecore:sequence:"

// Store is the part of a redis client the counter uses.
type Store interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type redisCounter struct {
	client Store
}

// NewRedis returns an allocator that counts with redis INCR and keeps the
// invoice_sequences row as its high-water mark.
func NewRedis(store Store, template string, clk clock.Clock) Allocator {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	return &allocator{counter: redisCounter{client: store}, template: template, clock: clk, log: zap.NewNop()}
}

// NewRedisClient is only dialed when the redis backend is selected.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	if cfg.SequenceBackend != config.SequenceBackendRedis {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

// increment seeds the key from the stored high-water mark with SETNX, so a
// flushed redis never hands out a number twice, then INCRs it and records
// the result back in the database.
func (c redisCounter) increment(ctx context.Context, db *gorm.DB, prefix string, now time.Time) (int64, error) {
	key := keyPrefix + prefix

	floor, err := currentValue(ctx, db, prefix)
	if err != nil {
		return 0, err
	}
	if err := c.client.SetNX(ctx, key, floor, 0).Err(); err != nil {
		return 0, err
	}
	value, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if err := ensureRow(ctx, db, prefix, now); err != nil {
		return 0, err
	}
	err = db.WithContext(ctx).Exec(
		`UPDATE invoice_sequences SET value = ?, updated_at = ? WHERE prefix = ? AND value < ?`,
		value,
		now,
		prefix,
		value,
	).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
