package forumdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHasRepliedToThread(t *testing.T) {
	ctx := context.Background()

	t.Run("any post by the user counts", func(t *testing.T) {
		conn := &stubConn{rows: [][]any{{true}}}
		replied, err := UserHasRepliedToThread(ctx, conn, 1, 10)
		require.Nil(t, err)
		assert.True(t, replied)
		require.Len(t, conn.queries, 1)
		assert.Equal(t, []any{10, 1}, conn.lastArgs)
	})

	// The author's own first post unlocks their hidden content, and a reply
	// that was later soft-deleted keeps it unlocked. The existence check must
	// not filter on either.
	t.Run("first and soft-deleted posts are not filtered out", func(t *testing.T) {
		conn := &stubConn{rows: [][]any{{true}}}
		_, err := UserHasRepliedToThread(ctx, conn, 1, 10)
		require.Nil(t, err)
		require.Len(t, conn.queries, 1)
		assert.NotContains(t, conn.queries[0], "is_first")
		assert.NotContains(t, conn.queries[0], "deleted_at")
	})

	t.Run("no posts means no reply", func(t *testing.T) {
		conn := &stubConn{rows: [][]any{{false}}}
		replied, err := UserHasRepliedToThread(ctx, conn, 1, 10)
		require.Nil(t, err)
		assert.False(t, replied)
	})
}
