package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU(t *testing.T) {
	t.Run("get after put", func(t *testing.T) {
		c := NewLRU[int, string](2)
		c.Put(1, "one")
		v, ok := c.Get(1)
		assert.True(t, ok)
		assert.Equal(t, "one", v)

		_, ok = c.Get(2)
		assert.False(t, ok)
	})

	t.Run("evicts least recently used at capacity", func(t *testing.T) {
		c := NewLRU[int, string](2)
		c.Put(1, "one")
		c.Put(2, "two")
		c.Get(1) // 2 is now the oldest
		c.Put(3, "three")

		_, ok := c.Get(2)
		assert.False(t, ok)
		_, ok = c.Get(1)
		assert.True(t, ok)
		_, ok = c.Get(3)
		assert.True(t, ok)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("put updates existing key", func(t *testing.T) {
		c := NewLRU[int, string](2)
		c.Put(1, "one")
		c.Put(1, "uno")
		v, _ := c.Get(1)
		assert.Equal(t, "uno", v)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("invalidate drops the key", func(t *testing.T) {
		c := NewLRU[int, string](2)
		c.Put(1, "one")
		c.Invalidate(1)
		_, ok := c.Get(1)
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())

		c.Invalidate(42) // no-op
	})
}
