package cache

import (
	"context"
	"fmt"

	"github.com/ymakhloufi/credit-simulator/internal/pkg/config"
)

// Open returns redis when an address is configured and an in-process cache otherwise.
func Open(ctx context.Context, cfg config.CacheConfig) (Cache, func(), error) {
	if cfg.RedisAddr == "" {
		return NewMemory(), func() {}, nil
	}

	r := NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := r.Ping(ctx); err != nil {
		_ = r.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}
	return r, func() { _ = r.Close() }, nil
}
