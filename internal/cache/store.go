// Package cache is a small TTL key/value store used to carry provider sessions
// across one-shot runs. Memory is the default; Redis shares sessions between
// hosts and survives process exit.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"orbitwatch/internal/config"
)

type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// New picks the store implementation named by cfg.Driver.
func New(cfg config.SessionCacheConfig) Store {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "redis":
		return NewRedisStore(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		}, cfg.KeyPrefix)
	default:
		return NewMemoryStore()
	}
}
