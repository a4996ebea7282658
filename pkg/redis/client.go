// Package redis opens the Redis connection that carries change notifications.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/John-Sie/YangBeiKTV/pkg/config"
)

const pingTimeout = 5 * time.Second

// Options maps config onto go-redis options.
func Options(cfg config.RedisConfig) *goredis.UniversalOptions {
	return &goredis.UniversalOptions{
		Addrs:        []string{cfg.Addr()},
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// Open connects and pings. The caller closes the client.
func Open(ctx context.Context, cfg config.RedisConfig) (goredis.UniversalClient, error) {
	rdb := goredis.NewUniversalClient(Options(cfg))
	if err := Ping(ctx, rdb); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr(), err)
	}
	return rdb, nil
}

// Ping checks connectivity with a bounded timeout.
func Ping(ctx context.Context, rdb goredis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return rdb.Ping(ctx).Err()
}
