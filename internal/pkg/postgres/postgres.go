// Package postgres provides PostgreSQL database connection utilities.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bissquit/incident-tracker/internal/pkg/retry"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config contains PostgreSQL connection configuration.
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectAttempts int
}

var connectBackoff = retry.Policy{Initial: time.Second, Max: 16 * time.Second, Multiplier: 2}

// Connect establishes a connection pool to PostgreSQL with retry logic.
// Backoff is exponential, capped at 16 seconds.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	var pool *pgxpool.Pool
	connect := func(int) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return fmt.Errorf("create pool: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return fmt.Errorf("ping: %w", err)
		}
		pool = p
		return nil
	}
	onRetry := func(attempt int, wait time.Duration, err error) {
		slog.Warn("failed to connect to database, retrying",
			"attempt", attempt,
			"max_attempts", cfg.ConnectAttempts,
			"backoff", wait,
			"error", err,
		)
	}

	if err := retry.Do(ctx, cfg.ConnectAttempts, connectBackoff, connect, onRetry); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	slog.Info("connected to database", "driver", "postgres")
	return pool, nil
}
