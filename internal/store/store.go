package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	// DriverMattn is github.com/mattn/go-sqlite3 (cgo). Default.
	DriverMattn = "sqlite3"

	// DriverModernc is modernc.org/sqlite (pure Go).
	DriverModernc = "sqlite"
)

// Drivers lists the accepted driver names.
var Drivers = []string{DriverMattn, DriverModernc}

// Open creates or opens a SQLite database at path and returns a Manager
// that owns the connection.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// The pool is limited to one connection, so ":memory:" databases persist for
// the lifetime of the Manager. This function is idempotent - safe to call
// multiple times on the same file.
func Open(ctx context.Context, path string, opts ...Option) (*Manager, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}

	o := buildOptions(opts)
	if !IsValidDriver(o.driver) {
		return nil, fmt.Errorf("unknown driver %q: must be one of %v", o.driver, Drivers)
	}

	db, err := sql.Open(o.driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection works
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	m, err := newManager(ctx, db, o)
	if err != nil {
		db.Close()
		return nil, err
	}

	o.logger.Debug().Str("path", path).Str("driver", o.driver).Msg("Database connection established")
	return m, nil
}

// IsValidDriver reports whether name is one of Drivers.
func IsValidDriver(name string) bool {
	for _, d := range Drivers {
		if d == name {
			return true
		}
	}
	return false
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
