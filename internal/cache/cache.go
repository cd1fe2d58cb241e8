// Package cache memoizes serialized evaluation responses, either in process
// or in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/home-affordability/internal/config"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"go.uber.org/zap"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache stores opaque values by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Key derives a fixed-length key for a route and its canonical request body.
func Key(prefix, route string, body []byte) string {
	d := xxhash.New()
	_, _ = d.WriteString(route)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(body)
	return prefix + route + ":" + strconv.FormatUint(d.Sum64(), 16)
}

// New builds the backend selected in cfg. Unknown backends fall back to no
// caching.
func New(ctx context.Context, logger *zap.Logger, cfg config.CacheConfig) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "", constants.CacheBackendMemory:
		return NewMemory(), nil
	case constants.CacheBackendNone:
		return Nop{}, nil
	case constants.CacheBackendRedis:
		r := NewRedis(cfg)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
		}
		logger.Info("using redis evaluation cache",
			zap.String("op", "cache.New"),
			zap.String("address", cfg.Address),
		)
		return r, nil
	default:
		logger.Warn(fmt.Sprintf("unknown cache backend %q, caching disabled", cfg.Backend),
			zap.String("op", "cache.New"),
		)
		return Nop{}, nil
	}
}

// Nop never stores anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

// Set discards the value.
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }
