// Package db provides PostgreSQL connection pooling and schema migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/John-Sie/YangBeiKTV/pkg/config"
)

// NewPool opens a pgx connection pool and pings it.
func NewPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// HealthStatus is reported on /health.
type HealthStatus struct {
	Healthy      bool   `json:"healthy"`
	ResponseTime string `json:"response_time"`
	TotalConns   int32  `json:"total_conns"`
	IdleConns    int32  `json:"idle_conns"`
	Error        string `json:"error,omitempty"`
}

// Check pings the pool and reports connection stats.
func Check(ctx context.Context, pool *pgxpool.Pool) HealthStatus {
	start := time.Now()
	status := HealthStatus{Healthy: true}

	if err := pool.Ping(ctx); err != nil {
		status.Healthy = false
		status.Error = err.Error()
	}

	stat := pool.Stat()
	status.TotalConns = stat.TotalConns()
	status.IdleConns = stat.IdleConns()
	status.ResponseTime = time.Since(start).String()
	return status
}
