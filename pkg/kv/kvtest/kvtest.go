// Package kvtest checks that a kv.Store behaves like the reference drivers.
package kvtest

import (
	"context"
	"testing"

	"moviehub/pkg/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises the read, write and remove contract of store. The store
// must start without the keys used here.
func Run(t *testing.T, store kv.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("should report missing keys", func(t *testing.T) {
		v, ok, err := store.Get(ctx, "kvtest:missing")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("should read back what was written", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "kvtest:a", `{"user":null}`))
		require.NoError(t, store.Set(ctx, "kvtest:a", `{"token":"t"}`))

		v, ok, err := store.Get(ctx, "kvtest:a")

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"token":"t"}`, v)
	})

	t.Run("should remove entries and ignore missing ones", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "kvtest:b", "x"))
		require.NoError(t, store.Remove(ctx, "kvtest:b"))
		require.NoError(t, store.Remove(ctx, "kvtest:b"))

		_, ok, err := store.Get(ctx, "kvtest:b")

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should keep prefixed keys apart", func(t *testing.T) {
		alice := kv.WithPrefix(store, "kvtest-alice")
		bob := kv.WithPrefix(store, "kvtest-bob")
		require.NoError(t, alice.Set(ctx, "auth-storage", "a"))
		require.NoError(t, bob.Set(ctx, "auth-storage", "b"))

		va, _, err := alice.Get(ctx, "auth-storage")
		require.NoError(t, err)
		vb, _, err := bob.Get(ctx, "auth-storage")
		require.NoError(t, err)

		assert.Equal(t, "a", va)
		assert.Equal(t, "b", vb)
	})
}
