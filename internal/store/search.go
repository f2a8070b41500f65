package store

import (
	"context"

	"github.com/lusfold/kvstore/internal/querysql"
)

// LIKE folds ASCII case; the instr variants compare bytes.
var (
	sqlSelectLike = querysql.MustParse(`SELECT "Key", "Value" FROM "KVStore" WHERE "Key" LIKE ? ` + querysql.LikeEscapeClause + ` ORDER BY "Key"`)

	sqlSelectPrefixExact = querysql.MustParse(`SELECT "Key", "Value" FROM "KVStore" WHERE instr("Key", ?) = 1 ORDER BY "Key"`)

	sqlSelectContainsExact = querysql.MustParse(`SELECT "Key", "Value" FROM "KVStore" WHERE instr("Key", ?) > 0 ORDER BY "Key"`)

	sqlSelectAll = querysql.MustParse(`SELECT "Key", "Value" FROM "KVStore" ORDER BY "Key"`)

	sqlCountAll = querysql.MustParse(`SELECT COUNT(*) FROM "KVStore"`)
)

// GetByPrefix returns every record whose key starts with prefix.
// No match yields an empty map, never nil.
//
// Wildcards in prefix are escaped and match literally.
func (m *Manager) GetByPrefix(ctx context.Context, prefix string) (map[string]string, error) {
	prefix, err := m.checkKey(prefix)
	if err != nil {
		return nil, err
	}
	unlock, err := m.rlock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	if m.caseSensitive {
		return m.queryPairs(ctx, "prefix", sqlSelectPrefixExact, prefix)
	}
	return m.queryPairs(ctx, "prefix", sqlSelectLike, querysql.PrefixPattern(prefix))
}

// GetByContains returns every record whose key contains substr anywhere.
// No match yields an empty map, never nil.
func (m *Manager) GetByContains(ctx context.Context, substr string) (map[string]string, error) {
	substr, err := m.checkKey(substr)
	if err != nil {
		return nil, err
	}
	unlock, err := m.rlock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	if m.caseSensitive {
		return m.queryPairs(ctx, "contains", sqlSelectContainsExact, substr)
	}
	return m.queryPairs(ctx, "contains", sqlSelectLike, querysql.ContainsPattern(substr))
}

// All returns every record.
func (m *Manager) All(ctx context.Context) (map[string]string, error) {
	unlock, err := m.rlock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	return m.queryPairs(ctx, "all", sqlSelectAll)
}

// Count returns the number of records.
func (m *Manager) Count(ctx context.Context) (int64, error) {
	unlock, err := m.rlock()
	if err != nil {
		return 0, err
	}
	defer unlock()

	var n int64
	if _, err := m.scanOne(ctx, "count", sqlCountAll, nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}
