package perms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoped(t *testing.T) {
	assert.Equal(t, "category12.thread.edit", Scoped(12, ThreadEdit))
}

func TestPermissionSet(t *testing.T) {
	t.Run("zero value holds nothing", func(t *testing.T) {
		var set PermissionSet
		assert.False(t, set.HasAny(ThreadEdit))
		assert.False(t, set.HasAnyScoped(1, ThreadEdit))
	})
	t.Run("global and scoped names", func(t *testing.T) {
		set := NewPermissionSet(ThreadReply, Scoped(3, ThreadEdit))
		assert.True(t, set.HasAny(ThreadReply))
		assert.True(t, set.HasAnyScoped(3, ThreadEdit))
		assert.False(t, set.HasAnyScoped(4, ThreadEdit))
		assert.False(t, set.HasAny(ThreadSticky))
	})
	t.Run("admin holds everything", func(t *testing.T) {
		set := AdminPermissionSet()
		assert.True(t, set.HasAny(ThreadSticky))
		assert.True(t, set.HasAnyScoped(99, ThreadHideOwn))
	})
}
