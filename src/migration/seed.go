package migration

import (
	"context"
	"fmt"

	"git.mbbs.network/mbbs/mbbs/src/auth"
	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/perms"
)

// Permissions granted to the default member group.
var memberPermissions = []string{
	perms.ThreadCreate,
	perms.ThreadReply,
	perms.ThreadLike,
	perms.ThreadViewPosts,
	perms.ThreadEditOwn,
	perms.ThreadHideOwn,
}

// Permissions granted to anonymous visitors.
var touristPermissions = []string{
	perms.ThreadViewPosts,
}

/*
Seed creates the minimum data a fresh deployment needs: the built-in groups
with their permissions, an admin account (username admin, default password
12345678), and one category to post in. Running it twice fails
on the unique username; it is not idempotent.
*/
func Seed() {
	ctx := context.Background()

	conn := db.NewConn()
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		panic(fmt.Errorf("failed to start seed transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	// Group ids are fixed: the admin and tourist groups are recognized by id.
	_, err = tx.Exec(ctx,
		`
		INSERT INTO groups (id, name, is_default) VALUES
			($1, 'admin', FALSE),
			(2, 'member', TRUE),
			($2, 'tourist', FALSE)
		`,
		models.GroupIDAdmin, models.GroupIDTourist,
	)
	if err != nil {
		panic(fmt.Errorf("failed to seed groups: %w", err))
	}
	_, err = tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('groups', 'id'), 10)`)
	if err != nil {
		panic(fmt.Errorf("failed to bump the group id sequence: %w", err))
	}

	for _, permission := range memberPermissions {
		_, err = tx.Exec(ctx,
			`INSERT INTO group_permissions (group_id, permission) VALUES (2, $1)`,
			permission,
		)
		if err != nil {
			panic(fmt.Errorf("failed to seed member permissions: %w", err))
		}
	}
	for _, permission := range touristPermissions {
		_, err = tx.Exec(ctx,
			`INSERT INTO group_permissions (group_id, permission) VALUES ($1, $2)`,
			models.GroupIDTourist, permission,
		)
		if err != nil {
			panic(fmt.Errorf("failed to seed tourist permissions: %w", err))
		}
	}

	password := auth.HashPassword("12345678")
	_, err = tx.Exec(ctx,
		`
		INSERT INTO users (username, password, nickname, group_id, token)
		VALUES ('admin', $1, 'Admin', $2, $3)
		`,
		password.String(), models.GroupIDAdmin, auth.NewToken(),
	)
	if err != nil {
		panic(fmt.Errorf("failed to seed admin user: %w", err))
	}

	_, err = tx.Exec(ctx,
		`
		INSERT INTO categories (name, description, sort_order)
		VALUES ('General', 'General discussion', 0)
		`,
	)
	if err != nil {
		panic(fmt.Errorf("failed to seed category: %w", err))
	}

	err = tx.Commit(ctx)
	if err != nil {
		panic(fmt.Errorf("failed to commit seed: %w", err))
	}

	fmt.Println("Seeded groups, admin user, and a General category.")
}
