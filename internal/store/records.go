package store

import (
	"context"

	"github.com/lusfold/kvstore/internal/querysql"
)

var (
	sqlCountKey = querysql.MustParse(`SELECT COUNT(*) FROM "KVStore" WHERE "Key" = ?`)

	sqlSelectValue = querysql.MustParse(`SELECT "Value" FROM "KVStore" WHERE "Key" = ?`)

	sqlInsert = querysql.MustParse(`INSERT INTO "KVStore" ("Key", "Value") VALUES (?, ?) ON CONFLICT("Key") DO NOTHING`)

	sqlUpdate = querysql.MustParse(`UPDATE "KVStore" SET "Value" = ? WHERE "Key" = ?`)

	sqlUpsert = querysql.MustParse(`INSERT INTO "KVStore" ("Key", "Value") VALUES (?, ?) ON CONFLICT("Key") DO UPDATE SET "Value" = excluded."Value" RETURNING rowid`)

	sqlDelete = querysql.MustParse(`DELETE FROM "KVStore" WHERE "Key" = ?`)
)

// Exists reports whether a record with exactly this key is present.
func (m *Manager) Exists(ctx context.Context, key string) (bool, error) {
	key, err := m.checkKey(key)
	if err != nil {
		return false, err
	}
	unlock, err := m.rlock()
	if err != nil {
		return false, err
	}
	defer unlock()

	var count int
	if _, err := m.scanOne(ctx, "exists", sqlCountKey, []string{key}, &count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// Get returns the value stored under key.
// found is false when no record matches; that is not an error.
func (m *Manager) Get(ctx context.Context, key string) (value string, found bool, err error) {
	key, err = m.checkKey(key)
	if err != nil {
		return "", false, err
	}
	unlock, err := m.rlock()
	if err != nil {
		return "", false, err
	}
	defer unlock()

	found, err = m.scanOne(ctx, "get", sqlSelectValue, []string{key}, &value)
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

// Insert creates a record. If the key already exists nothing is modified and
// the result is Rejected.
//
// Uses ON CONFLICT("Key") DO NOTHING, so the existence check and the write
// are one atomic statement.
func (m *Manager) Insert(ctx context.Context, key, value string) (WriteResult, error) {
	key, err := m.checkPair(key, value)
	if err != nil {
		return WriteResult{}, err
	}
	unlock, err := m.rlock()
	if err != nil {
		return WriteResult{}, err
	}
	defer unlock()

	res, err := m.exec(ctx, m.conn, "insert", sqlInsert, key, value)
	if err != nil {
		return WriteResult{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return WriteResult{}, &StorageError{Op: "insert", Err: err}
	}
	if n == 0 {
		return rejected(), nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return WriteResult{}, &StorageError{Op: "insert", Err: err}
	}
	return WriteResult{Outcome: OutcomeInserted, RowID: id, RowsAffected: n}, nil
}

// Update overwrites the value of an existing record. If the key does not
// exist the result is Rejected.
func (m *Manager) Update(ctx context.Context, key, value string) (WriteResult, error) {
	key, err := m.checkPair(key, value)
	if err != nil {
		return WriteResult{}, err
	}
	unlock, err := m.rlock()
	if err != nil {
		return WriteResult{}, err
	}
	defer unlock()

	return m.update(ctx, key, value)
}

// InsertOrUpdate writes value under key whether or not the key exists.
//
// It first tries an UPDATE. When no row matched, it issues an upsert
// (INSERT ... ON CONFLICT DO UPDATE). If another connection inserts the key
// between the two statements the upsert overwrites it instead of failing, so
// exactly one writer wins per key. In that case the outcome is still
// reported as inserted.
func (m *Manager) InsertOrUpdate(ctx context.Context, key, value string) (WriteResult, error) {
	key, err := m.checkPair(key, value)
	if err != nil {
		return WriteResult{}, err
	}
	unlock, err := m.rlock()
	if err != nil {
		return WriteResult{}, err
	}
	defer unlock()

	res, err := m.update(ctx, key, value)
	if err != nil {
		return WriteResult{}, err
	}
	if !res.Rejected() {
		return res, nil
	}

	var id int64
	if _, err := m.scanOne(ctx, "upsert", sqlUpsert, []string{key, value}, &id); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Outcome: OutcomeInserted, RowID: id, RowsAffected: 1}, nil
}

// Delete removes the record with key. Returns 0 when the key is absent;
// deleting an absent key is not an error.
func (m *Manager) Delete(ctx context.Context, key string) (int64, error) {
	key, err := m.checkKey(key)
	if err != nil {
		return 0, err
	}
	unlock, err := m.rlock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	res, err := m.exec(ctx, m.conn, "delete", sqlDelete, key)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &StorageError{Op: "delete", Err: err}
	}
	return n, nil
}

func (m *Manager) update(ctx context.Context, key, value string) (WriteResult, error) {
	res, err := m.exec(ctx, m.conn, "update", sqlUpdate, value, key)
	if err != nil {
		return WriteResult{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return WriteResult{}, &StorageError{Op: "update", Err: err}
	}
	if n == 0 {
		return rejected(), nil
	}
	return WriteResult{Outcome: OutcomeUpdated, RowsAffected: n}, nil
}
