package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resqed/resqed-bot/internal/storage"
)

func newTestStore(t *testing.T) *KVStore {
	t.Helper()

	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewKVStore(db)
}

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Get(ctx, 7, "ResQEdQuizHistory")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, 7, "ResQEdQuizHistory", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, 7, "ResQEdQuizHistory", []byte(`[{"name":"x"}]`)))

	v, err := s.Get(ctx, 7, "ResQEdQuizHistory")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"x"}]`, string(v))
}

func TestKVStore_DeleteScopedByLearner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, 1, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, 1, "b", []byte("2")))
	require.NoError(t, s.Set(ctx, 2, "a", []byte("3")))

	require.NoError(t, s.Delete(ctx, 1, "a", "b"))

	_, err := s.Get(ctx, 1, "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.Get(ctx, 1, "b")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	v, err := s.Get(ctx, 2, "a")
	require.NoError(t, err)
	assert.Equal(t, "3", string(v))
}
