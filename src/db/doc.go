/*
Package db provides a thin, typed query layer on top of pgx.

Queries are plain SQL with one extension: the placeholder $columns expands to
the column names derived from the destination struct's `db` tags. Nested
structs tagged with a `db` prefix map to `prefix.column` references, so a
result row can stitch together several joined tables:

	type threadRow struct {
		Thread models.Thread `db:"thread"`
		Author *models.User  `db:"author"`
	}

	rows, err := db.Query[threadRow](ctx, conn,
		`
		SELECT $columns
		FROM threads AS thread
		LEFT JOIN users AS author ON author.id = thread.user_id
		WHERE thread.deleted_at IS NULL
		`,
	)

Use QueryScalar / QueryOneScalar for queries that produce a single primitive
column, like counts. Helpers that fetch one row return NotFound when the
result set is empty.
*/
package db
