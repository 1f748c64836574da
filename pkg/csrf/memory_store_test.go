package csrf_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Symple44/TopSteel-sub029/pkg/csrf"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("add and lookup", func(t *testing.T) {
		t.Parallel()

		store := csrf.NewMemoryStore(time.Hour, 4)
		require.NoError(t, store.AddToken(ctx, "sess", "h1"))

		ok, err := store.HasToken(ctx, "sess", "h1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.HasToken(ctx, "sess", "h2")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.HasToken(ctx, "other", "h1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("consume is single use", func(t *testing.T) {
		t.Parallel()

		store := csrf.NewMemoryStore(time.Hour, 4)
		require.NoError(t, store.AddToken(ctx, "sess", "h1"))

		ok, err := store.ConsumeToken(ctx, "sess", "h1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.ConsumeToken(ctx, "sess", "h1")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.HasToken(ctx, "sess", "h1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("evicts oldest at capacity", func(t *testing.T) {
		t.Parallel()

		store := csrf.NewMemoryStore(time.Hour, 2)
		require.NoError(t, store.AddToken(ctx, "sess", "h1"))
		require.NoError(t, store.AddToken(ctx, "sess", "h2"))
		require.NoError(t, store.AddToken(ctx, "sess", "h3"))

		ok, _ := store.HasToken(ctx, "sess", "h1")
		assert.False(t, ok, "oldest hash must be evicted")
		ok, _ = store.HasToken(ctx, "sess", "h2")
		assert.True(t, ok)
		ok, _ = store.HasToken(ctx, "sess", "h3")
		assert.True(t, ok)
	})

	t.Run("sweep drops idle sessions", func(t *testing.T) {
		t.Parallel()

		store := csrf.NewMemoryStore(time.Nanosecond, 4)
		require.NoError(t, store.AddToken(ctx, "sess", "h1"))

		time.Sleep(5 * time.Millisecond)
		require.NoError(t, store.Sweep(ctx))
		assert.Zero(t, store.Len())
	})

	t.Run("expired session rejects lookups", func(t *testing.T) {
		t.Parallel()

		store := csrf.NewMemoryStore(time.Nanosecond, 4)
		require.NoError(t, store.AddToken(ctx, "sess", "h1"))

		time.Sleep(5 * time.Millisecond)
		ok, err := store.HasToken(ctx, "sess", "h1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("close clears state", func(t *testing.T) {
		t.Parallel()

		store := csrf.NewMemoryStore(time.Hour, 4)
		require.NoError(t, store.AddToken(ctx, "sess", "h1"))
		require.NoError(t, store.Close())
		assert.Zero(t, store.Len())
	})
}
