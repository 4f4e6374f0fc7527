package forumdata

import (
	"context"
	"errors"
	"strings"
	"testing"

	"git.mbbs.network/mbbs/mbbs/src/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory db.ConnOrTx for exercising SQL-issuing helpers without a
// database. Every Query returns rows; Execs fail when failExec says so.
type stubConn struct {
	rows     [][]any
	failExec func(sql string) bool

	queries  []string
	execs    []string
	lastArgs []any
}

func (c *stubConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.queries = append(c.queries, sql)
	c.lastArgs = args
	return &stubRows{vals: c.rows}, nil
}

func (c *stubConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("QueryRow is not stubbed")
}

func (c *stubConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.execs = append(c.execs, sql)
	c.lastArgs = args
	if c.failExec != nil && c.failExec(sql) {
		return pgconn.CommandTag{}, errors.New("exec failed")
	}
	return pgconn.CommandTag{}, nil
}

func (c *stubConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("transactions are not stubbed")
}

type stubRows struct {
	vals [][]any
	idx  int
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Scan(dest ...any) error                       { return nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Next() bool {
	r.idx++
	return r.idx <= len(r.vals)
}

func (r *stubRows) Values() ([]any, error) {
	return r.vals[r.idx-1], nil
}

func execMatching(fragment string) func(string) bool {
	return func(sql string) bool {
		return strings.Contains(sql, fragment)
	}
}

func TestRefreshThreadCounters(t *testing.T) {
	ctx := context.Background()
	thread := makeThread()

	t.Run("refreshes both counters", func(t *testing.T) {
		conn := &stubConn{}
		outcome := RefreshThreadCounters(ctx, conn, thread)
		assert.Equal(t, CountersApplied, outcome)
		require.Len(t, conn.execs, 2)
		assert.Contains(t, conn.execs[0], "UPDATE categories")
		assert.Contains(t, conn.execs[1], "UPDATE users")
	})

	t.Run("category failure degrades but still refreshes the user", func(t *testing.T) {
		conn := &stubConn{failExec: execMatching("UPDATE categories")}
		outcome := RefreshThreadCounters(ctx, conn, thread)
		assert.Equal(t, CountersDegraded, outcome)
		require.Len(t, conn.execs, 2)
		assert.Contains(t, conn.execs[1], "UPDATE users")
	})

	t.Run("user failure degrades too", func(t *testing.T) {
		conn := &stubConn{failExec: execMatching("UPDATE users")}
		outcome := RefreshThreadCounters(ctx, conn, thread)
		assert.Equal(t, CountersDegraded, outcome)
	})
}

func TestSaveThreadAndRefreshCounts(t *testing.T) {
	ctx := context.Background()
	thread := makeThread()

	t.Run("save and refresh succeed", func(t *testing.T) {
		conn := &stubConn{}
		outcome, err := SaveThreadAndRefreshCounts(ctx, conn, thread)
		require.Nil(t, err)
		assert.Equal(t, CountersApplied, outcome)
	})

	t.Run("counter failure is degraded, not an error", func(t *testing.T) {
		conn := &stubConn{failExec: execMatching("UPDATE categories")}
		outcome, err := SaveThreadAndRefreshCounts(ctx, conn, thread)
		require.Nil(t, err)
		assert.Equal(t, CountersDegraded, outcome)
	})

	t.Run("failing to save the thread is an error", func(t *testing.T) {
		conn := &stubConn{failExec: execMatching("UPDATE threads")}
		_, err := SaveThreadAndRefreshCounts(ctx, conn, thread)
		assert.NotNil(t, err)
	})
}

func TestModerateThreadQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("nil fields are left alone", func(t *testing.T) {
		conn := &stubConn{}
		err := ModerateThread(ctx, conn, 10, ModerationUpdate{})
		require.Nil(t, err)
		require.Len(t, conn.execs, 1)
		assert.NotContains(t, conn.execs[0], "is_approved")
		assert.NotContains(t, conn.execs[0], "is_sticky")
	})

	t.Run("set fields bind in order", func(t *testing.T) {
		conn := &stubConn{}
		sticky := true
		approval := models.ThreadApprovalOk
		err := ModerateThread(ctx, conn, 10, ModerationUpdate{
			Approval: &approval,
			IsSticky: &sticky,
		})
		require.Nil(t, err)
		require.Len(t, conn.execs, 1)
		assert.Contains(t, conn.execs[0], "is_approved = $2")
		assert.Contains(t, conn.execs[0], "is_sticky = $3")
		assert.Equal(t, models.ThreadApprovalOk, conn.lastArgs[1])
		assert.Equal(t, true, conn.lastArgs[2])
		assert.Equal(t, 10, conn.lastArgs[3])
	})
}
