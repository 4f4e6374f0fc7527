package models

import "time"

type Category struct {
	ID int `db:"id"`

	Name        string `db:"name"`
	Description string `db:"description"`
	SortOrder   int    `db:"sort_order"`
	Hidden      bool   `db:"hidden"`

	// Derived counter, refreshed best-effort on thread writes.
	ThreadCount int `db:"thread_count"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
