package forumdata

import (
	"context"
	"errors"
	"time"

	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/logging"
	"git.mbbs.network/mbbs/mbbs/src/mdcontent"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/oops"
)

// Replies are rejected while a thread has posting disabled by a moderator.
var ErrPostingDisabled = errors.New("posting is disabled for this thread")

type CreateThreadInput struct {
	UserID     int
	CategoryID int
	Title      string
	Content    string // Markdown source
	IsDraft    bool
	Approval   models.ThreadApproval
}

/*
Creates a thread together with its first post. The post carries the Markdown
content; the thread row caches a plain-text rendition for search. Counter
refresh is the caller's concern, see RefreshThreadCounters.
*/
func CreateThread(
	ctx context.Context,
	dbConn db.ConnOrTx,
	input CreateThreadInput,
) (*models.Thread, *models.Post, error) {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return nil, nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	indexText := mdcontent.ToPureText(input.Content)

	threadID, err := db.QueryOneScalar[int](ctx, tx,
		`
		INSERT INTO threads (
			user_id, category_id, title, content_for_indexes,
			is_approved, is_draft,
			post_count, view_count,
			posted_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, 1, 0, $7, $7, $7)
		RETURNING id
		`,
		input.UserID, input.CategoryID, input.Title, indexText,
		input.Approval, input.IsDraft,
		now,
	)
	if err != nil {
		return nil, nil, oops.New(err, "failed to insert thread")
	}

	postID, err := db.QueryOneScalar[int](ctx, tx,
		`
		INSERT INTO posts (
			thread_id, user_id, is_first, content,
			like_count, reply_count,
			created_at, updated_at
		)
		VALUES ($1, $2, TRUE, $3, 0, 0, $4, $4)
		RETURNING id
		`,
		threadID, input.UserID, input.Content, now,
	)
	if err != nil {
		return nil, nil, oops.New(err, "failed to insert first post")
	}

	_, err = tx.Exec(ctx,
		`
		UPDATE threads
		SET first_post_id = $1
		WHERE id = $2
		`,
		postID, threadID,
	)
	if err != nil {
		return nil, nil, oops.New(err, "failed to link first post")
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, nil, oops.New(err, "failed to commit thread creation")
	}

	thread, err := FetchThread(ctx, dbConn, threadID)
	if err != nil {
		return nil, nil, err
	}
	post, err := FetchPost(ctx, dbConn, postID)
	if err != nil {
		return nil, nil, err
	}
	return thread, post, nil
}

/*
Edits the title and content of a thread. Rewrites the cached plain text for
search and stamps modified_at, which view projection surfaces instead of
created_at from then on.
*/
func EditThreadContent(
	ctx context.Context,
	dbConn db.ConnOrTx,
	thread *models.Thread,
	editorID int,
	title, content string,
) error {
	firstPost, err := ResolveFirstPost(ctx, dbConn, thread)
	if err != nil {
		return err
	}
	if firstPost == nil {
		return oops.New(nil, "thread %d has no first post to edit", thread.ID)
	}

	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	_, err = tx.Exec(ctx,
		`
		UPDATE posts
		SET content = $1, edited_user_id = $2, updated_at = $3
		WHERE id = $4
		`,
		content, editorID, now, firstPost.ID,
	)
	if err != nil {
		return oops.New(err, "failed to update first post of thread %d", thread.ID)
	}

	_, err = tx.Exec(ctx,
		`
		UPDATE threads
		SET title = $1, content_for_indexes = $2, modified_at = $3, updated_at = $3
		WHERE id = $4
		`,
		title, mdcontent.ToPureText(content), now, thread.ID,
	)
	if err != nil {
		return oops.New(err, "failed to update thread %d", thread.ID)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return oops.New(err, "failed to commit thread edit")
	}
	return nil
}

/*
Adds a reply post to a thread, bumping the thread's reply bookkeeping
(post_count, posted_at, last_posted_user_id) and the first post's
reply_count. Fails with ErrPostingDisabled when the thread is locked.
*/
func CreatePostReply(
	ctx context.Context,
	dbConn db.ConnOrTx,
	thread *models.Thread,
	userID int,
	content string,
) (*models.Post, error) {
	if thread.DisablePost {
		return nil, ErrPostingDisabled
	}

	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	postID, err := db.QueryOneScalar[int](ctx, tx,
		`
		INSERT INTO posts (
			thread_id, user_id, is_first, content,
			like_count, reply_count,
			created_at, updated_at
		)
		VALUES ($1, $2, FALSE, $3, 0, 0, $4, $4)
		RETURNING id
		`,
		thread.ID, userID, content, now,
	)
	if err != nil {
		return nil, oops.New(err, "failed to insert reply")
	}

	_, err = tx.Exec(ctx,
		`
		UPDATE threads
		SET
			post_count = post_count + 1,
			posted_at = $1,
			last_posted_user_id = $2,
			updated_at = $1
		WHERE id = $3
		`,
		now, userID, thread.ID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to bump reply counters on thread %d", thread.ID)
	}

	if thread.FirstPostID != nil {
		_, err = tx.Exec(ctx,
			`
			UPDATE posts
			SET reply_count = reply_count + 1
			WHERE id = $1
			`,
			*thread.FirstPostID,
		)
		if err != nil {
			return nil, oops.New(err, "failed to bump reply count on first post")
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, oops.New(err, "failed to commit reply")
	}

	return FetchPost(ctx, dbConn, postID)
}

// Moderation flags a moderator may flip on a thread. Nil fields are left as is.
type ModerationUpdate struct {
	Approval    *models.ThreadApproval
	IsSticky    *bool
	IsEssence   *bool
	DisablePost *bool
}

func ModerateThread(
	ctx context.Context,
	dbConn db.ConnOrTx,
	threadID int,
	update ModerationUpdate,
) error {
	var qb db.QueryBuilder
	qb.Add(`UPDATE threads SET updated_at = $?`, time.Now())
	if update.Approval != nil {
		qb.Add(`, is_approved = $?`, *update.Approval)
	}
	if update.IsSticky != nil {
		qb.Add(`, is_sticky = $?`, *update.IsSticky)
	}
	if update.IsEssence != nil {
		qb.Add(`, is_essence = $?`, *update.IsEssence)
	}
	if update.DisablePost != nil {
		qb.Add(`, disable_post = $?`, *update.DisablePost)
	}
	qb.Add(`WHERE id = $?`, threadID)

	_, err := dbConn.Exec(ctx, qb.String(), qb.Args()...)
	if err != nil {
		return oops.New(err, "failed to moderate thread %d", threadID)
	}
	return nil
}

/*
Marks a thread deleted without destroying the row, recording who deleted it.
Already-deleted threads are left untouched so the original deleter is never
overwritten.
*/
func SoftDeleteThread(
	ctx context.Context,
	dbConn db.ConnOrTx,
	threadID int,
	deletedByUserID int,
) error {
	_, err := dbConn.Exec(ctx,
		`
		UPDATE threads
		SET deleted_at = NOW(), deleted_user_id = $1
		WHERE id = $2 AND deleted_at IS NULL
		`,
		deletedByUserID, threadID,
	)
	if err != nil {
		return oops.New(err, "failed to delete thread %d", threadID)
	}
	return nil
}

// Persists the mutable fields of an existing thread row.
func SaveThread(ctx context.Context, dbConn db.ConnOrTx, thread *models.Thread) error {
	_, err := dbConn.Exec(ctx,
		`
		UPDATE threads
		SET
			last_posted_user_id = $1,
			category_id = $2,
			first_post_id = $3,
			is_approved = $4,
			is_sticky = $5,
			is_essence = $6,
			is_draft = $7,
			disable_post = $8,
			title = $9,
			content_for_indexes = $10,
			post_count = $11,
			view_count = $12,
			posted_at = $13,
			modified_at = $14,
			updated_at = NOW()
		WHERE id = $15
		`,
		thread.LastPostedUserID,
		thread.CategoryID,
		thread.FirstPostID,
		thread.IsApproved,
		thread.IsSticky,
		thread.IsEssence,
		thread.IsDraft,
		thread.DisablePost,
		thread.Title,
		thread.ContentForIndexes,
		thread.PostCount,
		thread.ViewCount,
		thread.PostedAt,
		thread.ModifiedAt,
		thread.ID,
	)
	if err != nil {
		return oops.New(err, "failed to save thread %d", thread.ID)
	}
	return nil
}

/*
Saves a thread and then refreshes the counters it feeds. The save is
transactional with the caller when dbConn is a transaction; the refresh is
best effort either way.
*/
func SaveThreadAndRefreshCounts(
	ctx context.Context,
	dbConn db.ConnOrTx,
	thread *models.Thread,
) (CounterRefreshOutcome, error) {
	err := SaveThread(ctx, dbConn, thread)
	if err != nil {
		return CountersDegraded, err
	}
	return RefreshThreadCounters(ctx, dbConn, thread), nil
}

// Outcome of a best-effort counter refresh.
type CounterRefreshOutcome int

const (
	CountersApplied CounterRefreshOutcome = iota
	CountersDegraded
)

func (o CounterRefreshOutcome) String() string {
	if o == CountersApplied {
		return "applied"
	}
	return "degraded"
}

/*
Recomputes the denormalized thread counts on the thread's category and
author. Failures here never fail the write that triggered the refresh: they
are logged and reported as CountersDegraded, and the stale counts get fixed
by the next successful refresh.
*/
func RefreshThreadCounters(
	ctx context.Context,
	dbConn db.ConnOrTx,
	thread *models.Thread,
) CounterRefreshOutcome {
	outcome := CountersApplied

	err := UpdateCategoryThreadCount(ctx, dbConn, thread.CategoryID)
	if err != nil {
		logging.ExtractLogger(ctx).Warn().
			Err(err).
			Int("category", thread.CategoryID).
			Msg("failed to refresh category thread count")
		outcome = CountersDegraded
	}

	err = UpdateUserThreadCount(ctx, dbConn, thread.UserID)
	if err != nil {
		logging.ExtractLogger(ctx).Warn().
			Err(err).
			Int("user", thread.UserID).
			Msg("failed to refresh user thread count")
		outcome = CountersDegraded
	}

	return outcome
}

// Recounts live, approved, non-draft threads in a category.
func UpdateCategoryThreadCount(ctx context.Context, dbConn db.ConnOrTx, categoryID int) error {
	_, err := dbConn.Exec(ctx,
		`
		UPDATE categories
		SET thread_count = (
			SELECT COUNT(*)
			FROM threads
			WHERE
				category_id = $1
				AND deleted_at IS NULL
				AND NOT is_draft
				AND is_approved = $2
		)
		WHERE id = $1
		`,
		categoryID, models.ThreadApprovalOk,
	)
	if err != nil {
		return oops.New(err, "failed to update thread count for category %d", categoryID)
	}
	return nil
}

// Recounts a user's live, non-draft threads.
func UpdateUserThreadCount(ctx context.Context, dbConn db.ConnOrTx, userID int) error {
	_, err := dbConn.Exec(ctx,
		`
		UPDATE users
		SET thread_count = (
			SELECT COUNT(*)
			FROM threads
			WHERE
				user_id = $1
				AND deleted_at IS NULL
				AND NOT is_draft
		)
		WHERE id = $1
		`,
		userID,
	)
	if err != nil {
		return oops.New(err, "failed to update thread count for user %d", userID)
	}
	return nil
}
