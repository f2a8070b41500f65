package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lusfold/kvstore/internal/querysql"
)

// Conn is the executable connection a Manager runs statements against.
// *sql.DB satisfies it.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Close() error
}

// execer is the subset of Conn shared with *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Manager is the key-value facade over the KVStore table.
//
// A Manager owns exactly one connection and closes it in Close. It does not
// serialize callers: concurrent access relies on SQLite locking. All writes
// are single statements, so no operation leaves a key half-written.
type Manager struct {
	mu     sync.RWMutex
	conn   Conn
	closed bool

	debug         atomic.Bool
	logger        zerolog.Logger
	normalizeKeys bool
	caseSensitive bool
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	driver        string
	logger        zerolog.Logger
	debug         bool
	normalizeKeys bool
	caseSensitive bool
}

func buildOptions(opts []Option) options {
	o := options{
		driver: DriverMattn,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithDriver selects the database/sql driver used by Open.
func WithDriver(name string) Option {
	return func(o *options) { o.driver = name }
}

// WithLogger sets the logger used for statement and lifecycle logs.
// Defaults to the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDebug sets the initial state of statement logging.
func WithDebug(enabled bool) Option {
	return func(o *options) { o.debug = enabled }
}

// WithNormalizeKeys makes the Manager NFC-normalize every key, prefix and
// substring before it reaches the database.
func WithNormalizeKeys(enabled bool) Option {
	return func(o *options) { o.normalizeKeys = enabled }
}

// WithCaseSensitiveSearch makes GetByPrefix and GetByContains compare bytes
// instead of using LIKE, which folds ASCII case.
func WithCaseSensitiveSearch(enabled bool) Option {
	return func(o *options) { o.caseSensitive = enabled }
}

// New wraps an open connection and guarantees the KVStore table exists.
func New(ctx context.Context, conn Conn, opts ...Option) (*Manager, error) {
	if conn == nil {
		return nil, errors.New("connection is required")
	}
	return newManager(ctx, conn, buildOptions(opts))
}

func newManager(ctx context.Context, conn Conn, o options) (*Manager, error) {
	m := &Manager{
		conn:          conn,
		logger:        o.logger,
		normalizeKeys: o.normalizeKeys,
		caseSensitive: o.caseSensitive,
	}
	m.debug.Store(o.debug)

	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// SetDebugLogging toggles logging of every statement at debug level.
func (m *Manager) SetDebugLogging(enabled bool) {
	m.debug.Store(enabled)
}

// DebugLogging reports whether statement logging is on.
func (m *Manager) DebugLogging() bool {
	return m.debug.Load()
}

// Close releases the connection. Every later call, including a second Close,
// returns ErrClosed.
func (m *Manager) Close() error {
	if m == nil || m.conn == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.closed = true

	if err := m.conn.Close(); err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	return nil
}

// isClosed is used by the shared-handle registry.
func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// rlock holds the Manager open for the duration of one operation.
func (m *Manager) rlock() (func(), error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrClosed
	}
	return m.mu.RUnlock, nil
}

// exec binds and runs a statement that returns no rows.
func (m *Manager) exec(ctx context.Context, e execer, op string, tmpl querysql.Template, args ...string) (sql.Result, error) {
	stmt, err := m.bind(op, tmpl, args)
	if err != nil {
		return nil, err
	}
	res, err := e.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	return res, nil
}

// scanOne runs a single-row query and scans it into dest.
// found is false when the query returns no rows.
func (m *Manager) scanOne(ctx context.Context, op string, tmpl querysql.Template, args []string, dest ...any) (found bool, err error) {
	stmt, err := m.bind(op, tmpl, args)
	if err != nil {
		return false, err
	}
	err = m.conn.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: op, Err: err}
	}
	return true, nil
}

// queryPairs runs a query selecting (Key, Value) and collects the rows.
// Returns an empty map (not nil) when nothing matches.
func (m *Manager) queryPairs(ctx context.Context, op string, tmpl querysql.Template, args ...string) (map[string]string, error) {
	stmt, err := m.bind(op, tmpl, args)
	if err != nil {
		return nil, err
	}

	rows, err := m.conn.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, &StorageError{Op: op, Err: err}
		}
		result[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}

	return result, nil
}

func (m *Manager) bind(op string, tmpl querysql.Template, args []string) (querysql.Statement, error) {
	stmt, err := tmpl.Bind(args...)
	if err != nil {
		return querysql.Statement{}, fmt.Errorf("%s: %w", op, err)
	}
	if m.debug.Load() {
		m.logger.Debug().Str("op", op).Str("sql", stmt.SQL).Interface("args", stmt.Args).Msg("Executing statement")
	}
	return stmt, nil
}
