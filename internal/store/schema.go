package store

import (
	"context"
	"fmt"

	"github.com/lusfold/kvstore/internal/querysql"
)

// Logical schema. Kept identical across drivers for file compatibility.
const (
	TableName   = "KVStore"
	ColumnKey   = "Key"
	ColumnValue = "Value"
)

var (
	sqlTableExists = querysql.MustParse(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`)

	sqlCreateTable = querysql.MustParse(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY NOT NULL, %s TEXT NOT NULL)`,
		querysql.QuoteIdent(TableName), querysql.QuoteIdent(ColumnKey), querysql.QuoteIdent(ColumnValue)))

	// Empties the table; the schema entry is kept.
	sqlTruncateTable = querysql.MustParse(`DELETE FROM ` + querysql.QuoteIdent(TableName))
)

// TableExists reports whether the KVStore table is present in sqlite_master.
func (m *Manager) TableExists(ctx context.Context) (bool, error) {
	unlock, err := m.rlock()
	if err != nil {
		return false, err
	}
	defer unlock()

	return m.tableExists(ctx)
}

// EnsureTable creates the KVStore table if it is absent.
// Calling it any number of times leaves one table with the same schema.
func (m *Manager) EnsureTable(ctx context.Context) error {
	unlock, err := m.rlock()
	if err != nil {
		return err
	}
	defer unlock()

	return m.ensureTable(ctx)
}

// ClearTable leaves the KVStore table present and empty, and returns the
// number of records it removed.
//
// The table is created first if it is missing, then emptied, in one
// transaction. Not isolated from readers on other connections beyond what
// SQLite provides.
func (m *Manager) ClearTable(ctx context.Context) (int64, error) {
	unlock, err := m.rlock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	tx, err := m.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, &StorageError{Op: "clear", Err: err}
	}
	defer tx.Rollback() // No-op if committed

	if _, err := m.exec(ctx, tx, "clear", sqlCreateTable); err != nil {
		return 0, err
	}
	res, err := m.exec(ctx, tx, "clear", sqlTruncateTable)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, &StorageError{Op: "clear", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return 0, &StorageError{Op: "clear", Err: err}
	}

	m.logger.Info().Str("table", TableName).Int64("removed", removed).Msg("Cleared key-value table")
	return removed, nil
}

func (m *Manager) tableExists(ctx context.Context) (bool, error) {
	var count int
	if _, err := m.scanOne(ctx, "table exists", sqlTableExists, []string{TableName}, &count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m *Manager) ensureTable(ctx context.Context) error {
	exists, err := m.tableExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if _, err := m.exec(ctx, m.conn, "create table", sqlCreateTable); err != nil {
		return err
	}
	m.logger.Info().Str("table", TableName).Msg("Created key-value table")
	return nil
}
