package forumdata

import (
	"context"

	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/oops"
)

// Fetches a post by id, deleted or not. Returns db.NotFound if no such post.
func FetchPost(ctx context.Context, dbConn db.ConnOrTx, postID int) (*models.Post, error) {
	post, err := db.QueryOne[models.Post](ctx, dbConn,
		`
		SELECT $columns
		FROM posts
		WHERE id = $1
		`,
		postID,
	)
	if err != nil {
		if err == db.NotFound {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch post %d", postID)
	}
	return post, nil
}

/*
Resolves the first post of a thread. Newer threads store first_post_id
directly; rows created before that column existed fall back to a lookup by
the is_first flag, and the resolved id is written back. The backfill is
conditional on first_post_id still being NULL so that concurrent resolvers
cannot clobber each other.

On success the thread's FirstPostID field is filled in. Legacy threads with
no first post at all yield (nil, nil); callers render such threads with
empty content.
*/
func ResolveFirstPost(ctx context.Context, dbConn db.ConnOrTx, thread *models.Thread) (*models.Post, error) {
	if thread.FirstPostID != nil {
		return FetchPost(ctx, dbConn, *thread.FirstPostID)
	}

	post, err := db.QueryOne[models.Post](ctx, dbConn,
		`
		SELECT $columns
		FROM posts
		WHERE
			thread_id = $1
			AND is_first
		ORDER BY id ASC
		LIMIT 1
		`,
		thread.ID,
	)
	if err != nil {
		if err == db.NotFound {
			return nil, nil
		}
		return nil, oops.New(err, "failed to look up first post of thread %d", thread.ID)
	}

	_, err = dbConn.Exec(ctx,
		`
		UPDATE threads
		SET first_post_id = $1
		WHERE id = $2 AND first_post_id IS NULL
		`,
		post.ID, thread.ID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to backfill first post id for thread %d", thread.ID)
	}
	thread.FirstPostID = &post.ID

	return post, nil
}

/*
Reports whether the user has any post in the thread. The first post counts,
so an author always unlocks their own hidden content, and soft-deleted posts
count too; having once posted keeps the content unlocked.
*/
func UserHasRepliedToThread(ctx context.Context, dbConn db.ConnOrTx, userID, threadID int) (bool, error) {
	replied, err := db.QueryOneScalar[bool](ctx, dbConn,
		`
		SELECT EXISTS (
			SELECT 1
			FROM posts
			WHERE
				thread_id = $1
				AND user_id = $2
		)
		`,
		threadID, userID,
	)
	if err != nil {
		return false, oops.New(err, "failed to check for replies by user %d in thread %d", userID, threadID)
	}
	return replied, nil
}

func HasUserLikedPost(ctx context.Context, dbConn db.ConnOrTx, userID, postID int) (bool, error) {
	liked, err := db.QueryOneScalar[bool](ctx, dbConn,
		`
		SELECT EXISTS (
			SELECT 1
			FROM post_likes
			WHERE post_id = $1 AND user_id = $2
		)
		`,
		postID, userID,
	)
	if err != nil {
		return false, oops.New(err, "failed to check like status of post %d", postID)
	}
	return liked, nil
}

/*
Records or removes a like on a post and keeps the denormalized like_count in
step. Liking twice is a no-op.
*/
func SetPostLiked(ctx context.Context, dbConn db.ConnOrTx, userID, postID int, liked bool) error {
	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if liked {
		_, err = tx.Exec(ctx,
			`
			INSERT INTO post_likes (post_id, user_id, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (post_id, user_id) DO NOTHING
			`,
			postID, userID,
		)
	} else {
		_, err = tx.Exec(ctx,
			`
			DELETE FROM post_likes
			WHERE post_id = $1 AND user_id = $2
			`,
			postID, userID,
		)
	}
	if err != nil {
		return oops.New(err, "failed to update like row for post %d", postID)
	}

	_, err = tx.Exec(ctx,
		`
		UPDATE posts
		SET like_count = (
			SELECT COUNT(*) FROM post_likes WHERE post_id = $1
		)
		WHERE id = $1
		`,
		postID,
	)
	if err != nil {
		return oops.New(err, "failed to refresh like count for post %d", postID)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return oops.New(err, "failed to commit like update")
	}
	return nil
}
