package forumdata

import (
	"context"

	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/oops"
)

func FetchUser(ctx context.Context, dbConn db.ConnOrTx, userID int) (*models.User, error) {
	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		SELECT $columns
		FROM users
		WHERE id = $1
		`,
		userID,
	)
	if err != nil {
		if err == db.NotFound {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch user %d", userID)
	}
	return user, nil
}

// Looks up the user owning an API token. Disabled accounts do not
// authenticate.
func FetchUserByToken(ctx context.Context, dbConn db.ConnOrTx, token string) (*models.User, error) {
	if token == "" {
		return nil, db.NotFound
	}
	user, err := db.QueryOne[models.User](ctx, dbConn,
		`
		SELECT $columns
		FROM users
		WHERE token = $1 AND status <> $2
		`,
		token, models.UserStatusDisabled,
	)
	if err != nil {
		if err == db.NotFound {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch user by token")
	}
	return user, nil
}

func FetchCategory(ctx context.Context, dbConn db.ConnOrTx, categoryID int) (*models.Category, error) {
	category, err := db.QueryOne[models.Category](ctx, dbConn,
		`
		SELECT $columns
		FROM categories
		WHERE id = $1
		`,
		categoryID,
	)
	if err != nil {
		if err == db.NotFound {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch category %d", categoryID)
	}
	return category, nil
}
