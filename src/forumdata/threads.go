package forumdata

import (
	"context"
	"time"

	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/oops"
)

type ThreadsQuery struct {
	// Available on all thread queries.
	UserIDs        []int                   // if empty, all authors
	CategoryIDs    []int                   // if empty, all categories
	ApprovalStates []models.ThreadApproval // if empty, all states

	// Soft-deleted and draft rows are excluded unless asked for. Drafts
	// are only ever visible to their owner; callers asking for drafts
	// must scope UserIDs accordingly.
	IncludeDeleted bool
	IncludeDrafts  bool

	// Inclusive created_at bounds. Zero values mean unbounded.
	CreatedAfter  time.Time
	CreatedBefore time.Time

	// Ignored when using FetchThread.
	ThreadIDs []int

	// Ignored when using FetchThread or CountThreads.
	Limit, Offset  int  // if zero, no pagination
	OrderByCreated bool // defaults to order by last replied
}

type ThreadAndStuff struct {
	Thread models.Thread `db:"thread"`
	Author *models.User  `db:"author"` // can be nil in case of a deleted user
}

/*
Fetches threads and their authors according to the given query params.
Sticky threads sort first, then whatever ordering the query asks for.
*/
func FetchThreads(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q ThreadsQuery,
) ([]ThreadAndStuff, error) {
	var qb db.QueryBuilder
	qb.Add(
		`
		SELECT $columns
		FROM
			threads AS thread
			LEFT JOIN users AS author ON author.id = thread.user_id
		WHERE
			TRUE
		`,
	)
	addThreadFilters(&qb, q)
	qb.Add(`ORDER BY thread.is_sticky DESC,`)
	if q.OrderByCreated {
		qb.Add(`thread.created_at DESC`)
	} else {
		qb.Add(`thread.posted_at DESC`)
	}
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	rows, err := db.Query[ThreadAndStuff](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch threads")
	}

	result := make([]ThreadAndStuff, len(rows))
	for i, row := range rows {
		result[i] = *row
	}
	return result, nil
}

/*
Fetches a single thread row by id. Applies no visibility filtering; use
FetchThreadView for viewer-dependent access.

Returns db.NotFound if the thread does not exist.
*/
func FetchThread(ctx context.Context, dbConn db.ConnOrTx, threadID int) (*models.Thread, error) {
	thread, err := db.QueryOne[models.Thread](ctx, dbConn,
		`
		SELECT $columns
		FROM threads
		WHERE id = $1
		`,
		threadID,
	)
	if err != nil {
		if err == db.NotFound {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch thread %d", threadID)
	}
	return thread, nil
}

func CountThreads(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q ThreadsQuery,
) (int, error) {
	var qb db.QueryBuilder
	qb.Add(
		`
		SELECT COUNT(*)
		FROM threads AS thread
		WHERE
			TRUE
		`,
	)
	addThreadFilters(&qb, q)

	count, err := db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return 0, oops.New(err, "failed to count threads")
	}

	return count, nil
}

func addThreadFilters(qb *db.QueryBuilder, q ThreadsQuery) {
	if !q.IncludeDeleted {
		qb.Add(`AND thread.deleted_at IS NULL`)
	}
	if !q.IncludeDrafts {
		qb.Add(`AND NOT thread.is_draft`)
	}
	if len(q.UserIDs) > 0 {
		qb.Add(`AND thread.user_id = ANY ($?)`, q.UserIDs)
	}
	if len(q.CategoryIDs) > 0 {
		qb.Add(`AND thread.category_id = ANY ($?)`, q.CategoryIDs)
	}
	if len(q.ApprovalStates) > 0 {
		qb.Add(`AND thread.is_approved = ANY ($?)`, q.ApprovalStates)
	}
	if len(q.ThreadIDs) > 0 {
		qb.Add(`AND thread.id = ANY ($?)`, q.ThreadIDs)
	}
	if !q.CreatedAfter.IsZero() {
		qb.Add(`AND thread.created_at >= $?`, q.CreatedAfter)
	}
	if !q.CreatedBefore.IsZero() {
		qb.Add(`AND thread.created_at <= $?`, q.CreatedBefore)
	}
}

/*
Counts threads a user created in an inclusive time range, drafts included.
Used for posting rate limits.
*/
func CountThreadsCreatedBetween(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID int,
	start, end time.Time,
) (int, error) {
	return CountThreads(ctx, dbConn, ThreadsQuery{
		UserIDs:       []int{userID},
		IncludeDrafts: true,
		CreatedAfter:  start,
		CreatedBefore: end,
	})
}

/*
Counts non-draft threads a user created since local start of day, optionally
scoped to one category.
*/
func CountThreadsCreatedToday(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID int,
	categoryID *int,
) (int, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	q := ThreadsQuery{
		UserIDs:      []int{userID},
		CreatedAfter: startOfDay,
	}
	if categoryID != nil {
		q.CategoryIDs = []int{*categoryID}
	}
	return CountThreads(ctx, dbConn, q)
}
