package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByPrefix(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)
	seedFruit(t, m)

	got, err := m.GetByPrefix(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apple": "1", "apricot": "2"}, got)

	got, err = m.GetByPrefix(ctx, "apr")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apricot": "2"}, got)
}

func TestGetByContains(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)
	seedFruit(t, m)

	got, err := m.GetByContains(ctx, "pp")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apple": "1"}, got)

	got, err = m.GetByContains(ctx, "an")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"banana": "3"}, got)
}

func TestSearch_NoMatchReturnsEmptyMap(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)
	seedFruit(t, m)

	got, err := m.GetByPrefix(ctx, "zzz")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got, err = m.GetByContains(ctx, "zzz")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_WildcardsMatchLiterally(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)
	for _, k := range []string{"100%", "1000", "a_b", "axb", `c\d`, "cxd"} {
		_, err := m.Insert(ctx, k, "v")
		require.NoError(t, err)
	}

	got, err := m.GetByContains(ctx, "%")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"100%": "v"}, got)

	got, err = m.GetByPrefix(ctx, "a_")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a_b": "v"}, got)

	got, err = m.GetByContains(ctx, `\`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{`c\d`: "v"}, got)
}

func TestSearch_CaseFolding(t *testing.T) {
	ctx := context.Background()

	folding := createTestStore(t)
	seedFruit(t, folding)
	got, err := folding.GetByPrefix(ctx, "AP")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	exact := createTestStore(t, WithCaseSensitiveSearch(true))
	seedFruit(t, exact)
	got, err = exact.GetByPrefix(ctx, "AP")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = exact.GetByPrefix(ctx, "ap")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apple": "1", "apricot": "2"}, got)

	got, err = exact.GetByContains(ctx, "NAN")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = exact.GetByContains(ctx, "nan")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"banana": "3"}, got)
}

func TestSearch_CaseSensitiveWildcardsAreLiteral(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t, WithCaseSensitiveSearch(true))
	for _, k := range []string{"a_b", "axb"} {
		_, err := m.Insert(ctx, k, "v")
		require.NoError(t, err)
	}

	got, err := m.GetByPrefix(ctx, "a_")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a_b": "v"}, got)
}

func TestAllAndCount(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	all, err := m.All(ctx)
	require.NoError(t, err)
	require.NotNil(t, all)
	assert.Empty(t, all)

	seedFruit(t, m)

	all, err = m.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"apple": "1", "apricot": "2", "banana": "3"}, all)

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
