package models

import "time"

type Post struct {
	ID int `db:"id"`

	ThreadID int `db:"thread_id"`
	UserID   int `db:"user_id"`

	// Set when somebody other than the author last edited the content.
	EditedUserID *int `db:"edited_user_id"`

	// The designated first post carries the thread's body content.
	IsFirst bool `db:"is_first"`

	// Markdown-rendered HTML, stored as authored.
	Content string `db:"content"`

	LikeCount  int `db:"like_count"`
	ReplyCount int `db:"reply_count"`

	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type PostLike struct {
	PostID    int       `db:"post_id"`
	UserID    int       `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}
