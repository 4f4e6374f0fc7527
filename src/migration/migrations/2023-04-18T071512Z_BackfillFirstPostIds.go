package migrations

import (
	"context"
	"time"

	"git.mbbs.network/mbbs/mbbs/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(BackfillFirstPostIds{})
}

type BackfillFirstPostIds struct{}

func (m BackfillFirstPostIds) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2023, 4, 18, 7, 15, 12, 0, time.UTC))
}

func (m BackfillFirstPostIds) Name() string {
	return "BackfillFirstPostIds"
}

func (m BackfillFirstPostIds) Description() string {
	return "Fills in first_post_id on threads that predate the column"
}

func (m BackfillFirstPostIds) Up(ctx context.Context, tx pgx.Tx) error {
	// Read paths lazily backfill this too, so only the leftovers are
	// touched here.
	_, err := tx.Exec(ctx, `
		UPDATE threads
		SET first_post_id = first.id
		FROM (
			SELECT DISTINCT ON (thread_id) thread_id, id
			FROM posts
			WHERE is_first
			ORDER BY thread_id, id ASC
		) AS first
		WHERE
			threads.id = first.thread_id
			AND threads.first_post_id IS NULL;
	`)
	return err
}

func (m BackfillFirstPostIds) Down(ctx context.Context, tx pgx.Tx) error {
	// Nothing to undo; the column stays nullable and read paths tolerate
	// NULL either way.
	return nil
}
