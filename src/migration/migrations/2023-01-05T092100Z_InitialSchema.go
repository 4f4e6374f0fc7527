package migrations

import (
	"context"
	"time"

	"git.mbbs.network/mbbs/mbbs/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(InitialSchema{})
}

type InitialSchema struct{}

func (m InitialSchema) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2023, 1, 5, 9, 21, 0, 0, time.UTC))
}

func (m InitialSchema) Name() string {
	return "InitialSchema"
}

func (m InitialSchema) Description() string {
	return "Creates the forum tables"
}

func (m InitialSchema) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE groups (
			id SERIAL PRIMARY KEY,
			name VARCHAR(64) NOT NULL,
			is_default BOOLEAN NOT NULL DEFAULT FALSE
		);

		CREATE TABLE group_permissions (
			group_id INT NOT NULL REFERENCES groups (id) ON DELETE CASCADE,
			permission VARCHAR(128) NOT NULL,
			PRIMARY KEY (group_id, permission)
		);

		CREATE TABLE users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(150) NOT NULL,
			password VARCHAR(256) NOT NULL,
			nickname VARCHAR(150) NOT NULL DEFAULT '',
			avatar VARCHAR(512) NOT NULL DEFAULT '',
			group_id INT NOT NULL REFERENCES groups (id),
			status INT NOT NULL DEFAULT 0,
			token VARCHAR(64) NOT NULL DEFAULT '',
			thread_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX users_username ON users (username);
		CREATE INDEX users_token ON users (token);

		CREATE TABLE categories (
			id SERIAL PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			sort_order INT NOT NULL DEFAULT 0,
			hidden BOOLEAN NOT NULL DEFAULT FALSE,
			thread_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);

		CREATE TABLE threads (
			id SERIAL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES users (id),
			last_posted_user_id INT REFERENCES users (id),
			category_id INT NOT NULL REFERENCES categories (id),
			first_post_id INT,
			is_approved INT NOT NULL DEFAULT 0,
			is_sticky BOOLEAN NOT NULL DEFAULT FALSE,
			is_essence BOOLEAN NOT NULL DEFAULT FALSE,
			is_draft BOOLEAN NOT NULL DEFAULT FALSE,
			disable_post BOOLEAN NOT NULL DEFAULT FALSE,
			title VARCHAR(256) NOT NULL,
			content_for_indexes TEXT NOT NULL DEFAULT '',
			post_count INT NOT NULL DEFAULT 1,
			view_count INT NOT NULL DEFAULT 0,
			posted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			modified_at TIMESTAMP WITH TIME ZONE,
			deleted_at TIMESTAMP WITH TIME ZONE,
			deleted_user_id INT REFERENCES users (id)
		);
		CREATE INDEX threads_user ON threads (user_id);
		CREATE INDEX threads_category ON threads (category_id);
		CREATE INDEX threads_created ON threads (created_at);
		CREATE INDEX threads_posted ON threads (posted_at);

		CREATE TABLE posts (
			id SERIAL PRIMARY KEY,
			thread_id INT NOT NULL REFERENCES threads (id),
			user_id INT NOT NULL REFERENCES users (id),
			edited_user_id INT REFERENCES users (id),
			is_first BOOLEAN NOT NULL DEFAULT FALSE,
			content TEXT NOT NULL,
			like_count INT NOT NULL DEFAULT 0,
			reply_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMP WITH TIME ZONE
		);
		CREATE INDEX posts_thread ON posts (thread_id);
		CREATE INDEX posts_user ON posts (user_id);
		CREATE INDEX posts_thread_first ON posts (thread_id, is_first);

		CREATE TABLE post_likes (
			post_id INT NOT NULL REFERENCES posts (id) ON DELETE CASCADE,
			user_id INT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			PRIMARY KEY (post_id, user_id)
		);

		ALTER TABLE threads
			ADD CONSTRAINT threads_first_post
			FOREIGN KEY (first_post_id) REFERENCES posts (id);
	`)
	return err
}

func (m InitialSchema) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE post_likes;
		ALTER TABLE threads DROP CONSTRAINT threads_first_post;
		DROP TABLE posts;
		DROP TABLE threads;
		DROP TABLE categories;
		DROP TABLE users;
		DROP TABLE group_permissions;
		DROP TABLE groups;
	`)
	return err
}
