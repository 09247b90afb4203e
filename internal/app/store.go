package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bissquit/incident-tracker/internal/config"
	"github.com/bissquit/incident-tracker/internal/incidents"
	"github.com/bissquit/incident-tracker/internal/incidents/memory"
	pgstore "github.com/bissquit/incident-tracker/internal/incidents/postgres"
	sqlitestore "github.com/bissquit/incident-tracker/internal/incidents/sqlite"
	"github.com/bissquit/incident-tracker/internal/pkg/metrics"
	"github.com/bissquit/incident-tracker/internal/pkg/postgres"
	"github.com/bissquit/incident-tracker/internal/pkg/sqlite"
	"github.com/bissquit/incident-tracker/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is an open incident store selected by storage.driver.
type Store struct {
	Repository incidents.Repository

	driver string
	dbURL  string
	pool   *pgxpool.Pool
	db     *sql.DB
}

// OpenStore connects to the configured store.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		defer cancel()

		pool, err := postgres.Connect(connectCtx, postgres.Config{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnectAttempts: cfg.Database.ConnectAttempts,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return &Store{
			Repository: pgstore.NewRepository(pool),
			driver:     config.DriverPostgres,
			dbURL:      cfg.Database.URL,
			pool:       pool,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Connect(ctx, sqlite.Config{Path: cfg.Storage.SQLitePath})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return &Store{
			Repository: sqlitestore.NewRepository(db),
			driver:     config.DriverSQLite,
			db:         db,
		}, nil

	case config.DriverMemory:
		slog.Warn("using in-memory store: incidents are lost on restart")
		return &Store{
			Repository: memory.NewRepository(),
			driver:     config.DriverMemory,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Driver returns the storage driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Migrate applies pending schema migrations and returns the schema version.
// The in-memory store has no schema.
func (s *Store) Migrate() (uint, error) {
	switch s.driver {
	case config.DriverPostgres:
		return migrations.UpPostgres(s.dbURL)
	case config.DriverSQLite:
		return migrations.UpSQLite(s.db)
	default:
		return 0, nil
	}
}

// Ping checks that the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	switch {
	case s.pool != nil:
		return s.pool.Ping(ctx)
	case s.db != nil:
		return s.db.PingContext(ctx)
	default:
		return ctx.Err()
	}
}

// RecordMetrics publishes connection pool gauges.
func (s *Store) RecordMetrics() {
	switch {
	case s.pool != nil:
		metrics.RecordDBPoolMetrics(s.pool)
	case s.db != nil:
		metrics.RecordSQLDBMetrics(s.db)
	}
}

// Close releases the store's connections.
func (s *Store) Close() {
	switch {
	case s.pool != nil:
		s.pool.Close()
	case s.db != nil:
		if err := s.db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}
}
