// Package sqlite provides SQLite database connection utilities built on the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"modernc.org/sqlite"
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// LowerFunc is a SQL function that lower-cases full Unicode text. The built-in
// lower() only folds ASCII.
const LowerFunc = "unicode_lower"

var registerOnce sync.Once

// Register installs the custom SQL functions. It is called by Connect and is
// safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		err = sqlite.RegisterDeterministicScalarFunction(LowerFunc, 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
	})
	if err != nil {
		return fmt.Errorf("register sqlite functions: %w", err)
	}
	return nil
}

// Config contains SQLite connection configuration.
type Config struct {
	// Path is a file path or ":memory:".
	Path string
}

// DSN returns the data source name for path with the pragmas every connection
// needs.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
}

// Connect opens the database and verifies it is reachable. A single connection
// is used so writes are serialized and in-memory databases are not split
// across connections.
func Connect(ctx context.Context, cfg Config) (*sql.DB, error) {
	if err := Register(); err != nil {
		return nil, err
	}

	db, err := sql.Open(DriverName, DSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	slog.Info("connected to database", "driver", "sqlite", "path", cfg.Path)
	return db, nil
}
