package store

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert_ThenGetAndExists(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	for i := 0; i < 20; i++ {
		key := uuid.NewString()
		value := fmt.Sprintf("value-%d", i)

		res, err := m.Insert(ctx, key, value)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInserted, res.Outcome)
		assert.Positive(t, res.RowID)
		assert.Equal(t, int64(1), res.RowsAffected)

		got, found, err := m.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, value, got)

		exists, err := m.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists)
	}
}

func TestInsert_ExistingKeyRejected(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	_, err := m.Insert(ctx, "k", "v1")
	require.NoError(t, err)

	res, err := m.Insert(ctx, "k", "v2")
	require.NoError(t, err)
	assert.True(t, res.Rejected())
	assert.Zero(t, res.RowsAffected)

	value, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", value)
}

func TestUpdate_MissingKeyRejected(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	res, err := m.Update(ctx, "missing", "v")
	require.NoError(t, err)
	assert.True(t, res.Rejected())

	exists, err := m.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUpdate_OverwritesValue(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	_, err := m.Insert(ctx, "k", "v1")
	require.NoError(t, err)

	res, err := m.Update(ctx, "k", "v2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, int64(1), res.RowsAffected)

	value, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)
}

func TestInsertOrUpdate_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	res, err := m.InsertOrUpdate(ctx, "k", "v1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, res.Outcome)
	assert.Positive(t, res.RowID)

	res, err = m.InsertOrUpdate(ctx, "k", "v2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, int64(1), res.RowsAffected)

	value, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestInsertOrUpdate_ConcurrentWritersSameKey(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := m.InsertOrUpdate(ctx, "shared", fmt.Sprintf("w%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("InsertOrUpdate failed: %v", err)
	}

	n, err := m.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	n, err := m.Delete(ctx, "absent")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = m.Insert(ctx, "k", "v")
	require.NoError(t, err)

	n, err = m.Delete(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	exists, err := m.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGet_Absent(t *testing.T) {
	m := createTestStore(t)

	value, found, err := m.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestKeyRequired(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)
	seedFruit(t, m)

	_, err := m.Exists(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, _, err = m.Get(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = m.Insert(ctx, "", "v")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = m.Update(ctx, "", "v")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = m.InsertOrUpdate(ctx, "", "v")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = m.Delete(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = m.GetByPrefix(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)
	_, err = m.GetByContains(ctx, "")
	assert.ErrorIs(t, err, ErrKeyRequired)

	// Key check runs before the value check.
	_, err = m.Insert(ctx, "", "")
	assert.ErrorIs(t, err, ErrKeyRequired)
}

func TestValueRequired(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	_, err := m.Insert(ctx, "k", "")
	assert.ErrorIs(t, err, ErrValueRequired)
	_, err = m.Update(ctx, "k", "")
	assert.ErrorIs(t, err, ErrValueRequired)
	_, err = m.InsertOrUpdate(ctx, "k", "")
	assert.ErrorIs(t, err, ErrValueRequired)

	exists, err := m.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMetacharactersStoredVerbatim(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	tricky := []string{`it's`, `"quoted"`, `100%`, `a_b`, `?`, `x'); DROP TABLE "KVStore"; --`, `back\slash`}
	for _, k := range tricky {
		_, err := m.Insert(ctx, k, k+"-value")
		require.NoError(t, err, k)
	}

	for _, k := range tricky {
		value, found, err := m.Get(ctx, k)
		require.NoError(t, err, k)
		assert.True(t, found, k)
		assert.Equal(t, k+"-value", value)
	}

	exists, err := m.TableExists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNormalizeKeys(t *testing.T) {
	ctx := context.Background()
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"

	plain := createTestStore(t)
	_, err := plain.Insert(ctx, decomposed, "v")
	require.NoError(t, err)
	_, found, err := plain.Get(ctx, composed)
	require.NoError(t, err)
	assert.False(t, found, "keys compare bytes without normalization")

	normalized := createTestStore(t, WithNormalizeKeys(true))
	_, err = normalized.Insert(ctx, decomposed, "v")
	require.NoError(t, err)
	value, found, err := normalized.Get(ctx, composed)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)
}

func TestStorageFailure(t *testing.T) {
	ctx := context.Background()
	m := createTestStore(t)

	// Pull the connection out from under the Manager.
	require.NoError(t, m.conn.Close())

	_, _, err := m.Get(ctx, "k")
	require.Error(t, err)
	assert.True(t, IsStorageFailure(err))
	assert.Contains(t, err.Error(), "get:")

	assert.False(t, IsStorageFailure(ErrKeyRequired))
}

func TestDebugLogging(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	m := createTestStore(t, WithLogger(zerolog.New(&buf)))

	assert.False(t, m.DebugLogging())
	_, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Executing statement")

	m.SetDebugLogging(true)
	assert.True(t, m.DebugLogging())
	_, _, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Executing statement")
	assert.Contains(t, buf.String(), `"op":"get"`)

	buf.Reset()
	m.SetDebugLogging(false)
	_, _, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestWithDebug(t *testing.T) {
	m := createTestStore(t, WithDebug(true), WithLogger(zerolog.Nop()))
	assert.True(t, m.DebugLogging())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "inserted", OutcomeInserted.String())
	assert.Equal(t, "updated", OutcomeUpdated.String())
	assert.Equal(t, "rejected", OutcomeRejected.String())
}
