package models

import "time"

type ThreadApproval int

const (
	// Awaiting moderator review.
	ThreadApprovalChecking ThreadApproval = 0
	// Reviewed and publicly visible.
	ThreadApprovalOk ThreadApproval = 1
	// Rejected; lives in the recycle bin.
	ThreadApprovalCheckFailed ThreadApproval = 2
)

type Thread struct {
	ID int `db:"id"`

	UserID           int  `db:"user_id"`
	LastPostedUserID *int `db:"last_posted_user_id"`
	CategoryID       int  `db:"category_id"`

	// The post holding the thread's body text. Nullable because legacy
	// rows predate the column; see forumdata.ResolveFirstPost.
	FirstPostID *int `db:"first_post_id"`

	IsApproved  ThreadApproval `db:"is_approved"`
	IsSticky    bool           `db:"is_sticky"`
	IsEssence   bool           `db:"is_essence"`
	IsDraft     bool           `db:"is_draft"`
	DisablePost bool           `db:"disable_post"`

	Title string `db:"title"`

	// Plain-text rendering of the body, kept for search indexing.
	ContentForIndexes string `db:"content_for_indexes"`

	// At least 1 once the first post exists; the body counts as a post.
	PostCount int `db:"post_count"`
	ViewCount int `db:"view_count"`

	PostedAt   time.Time  `db:"posted_at"` // last reply time
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
	ModifiedAt *time.Time `db:"modified_at"` // content/title edit time

	// Soft delete. Not enforced by any query scope; callers filter
	// explicitly.
	DeletedAt     *time.Time `db:"deleted_at"`
	DeletedUserID *int       `db:"deleted_user_id"`
}

// DisplayModifiedAt normalizes modified_at for legacy rows that predate the
// column.
func (t *Thread) DisplayModifiedAt() time.Time {
	if t.ModifiedAt != nil {
		return *t.ModifiedAt
	}
	return t.CreatedAt
}

func (t *Thread) IsDeleted() bool {
	return t.DeletedAt != nil
}
