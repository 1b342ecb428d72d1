// Package kvtest holds the behavior every kv.Store implementation must share.
package kvtest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/advdv/xeno/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run asserts the store contract against s. Keys are namespaced by the test name so it can run against shared
// backends.
func Run(t *testing.T, s kv.Store) {
	t.Helper()

	ctx := context.Background()
	key := func(k string) string { return t.Name() + "/" + k }

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, key("missing"))
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, key("a"), []byte("value1")))

		val, err := s.Get(ctx, key("a"))
		require.NoError(t, err)
		assert.Equal(t, "value1", string(val))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, key("b"), []byte("one")))
		require.NoError(t, s.Put(ctx, key("b"), []byte("two")))

		val, err := s.Get(ctx, key("b"))
		require.NoError(t, err)
		assert.Equal(t, "two", string(val))
	})

	t.Run("binary values", func(t *testing.T) {
		bin := []byte{0, 1, 2, 255}
		require.NoError(t, s.Put(ctx, key("bin"), bin))

		val, err := s.Get(ctx, key("bin"))
		require.NoError(t, err)
		assert.Equal(t, bin, val)
	})

	t.Run("value is copied", func(t *testing.T) {
		v := []byte("orig")
		require.NoError(t, s.Put(ctx, key("c"), v))
		v[0] = 'X'

		val, err := s.Get(ctx, key("c"))
		require.NoError(t, err)
		assert.Equal(t, "orig", string(val))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, key("d"), []byte("x")))
		require.NoError(t, s.Delete(ctx, key("d")))

		_, err := s.Get(ctx, key("d"))
		require.ErrorIs(t, err, kv.ErrNotFound)

		require.NoError(t, s.Delete(ctx, key("never-existed")))
	})

	t.Run("concurrent access", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()

				k := key(fmt.Sprintf("conc-%d", i))
				assert.NoError(t, s.Put(ctx, k, []byte(k)))

				val, err := s.Get(ctx, k)
				assert.NoError(t, err)
				assert.Equal(t, k, string(val))
			}()
		}

		wg.Wait()
	})
}
