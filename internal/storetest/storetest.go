// Package storetest opens throwaway stores for tests. Import it from _test.go
// files only.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lusfold/kvstore/internal/store"
)

// NewManager opens a store in a fresh temp directory and closes it when the
// test ends. Returns the Manager and the database path.
func NewManager(t testing.TB, opts ...store.Option) (*store.Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kvstore.db")
	m, err := store.Open(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m, path
}

// Seed inserts entries, failing the test on any error or rejection.
func Seed(t testing.TB, m *store.Manager, entries map[string]string) {
	t.Helper()
	for k, v := range entries {
		res, err := m.Insert(context.Background(), k, v)
		require.NoError(t, err, "seed %q", k)
		require.False(t, res.Rejected(), "seed %q rejected", k)
	}
}
