package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

// createTestStore opens a fresh store in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	m, err := Open(context.Background(), path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

// seedFruit inserts the records used by the search tests.
func seedFruit(t *testing.T, m *Manager) {
	t.Helper()
	for _, kv := range [][2]string{{"apple", "1"}, {"apricot", "2"}, {"banana", "3"}} {
		if _, err := m.Insert(context.Background(), kv[0], kv[1]); err != nil {
			t.Fatalf("Insert(%q) failed: %v", kv[0], err)
		}
	}
}

// verifyPragma checks that a pragma is set to the expected value.
func (m *Manager) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := m.conn.QueryRowContext(context.Background(), query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
