package models

const (
	// Administrators implicitly hold every permission.
	GroupIDAdmin = 1
	// Fallback group for anonymous viewers.
	GroupIDTourist = 7
)

type Group struct {
	ID   int    `db:"id"`
	Name string `db:"name"`

	// New registrations land here when true.
	IsDefault bool `db:"is_default"`
}

// One row per permission string held by a group. Permission names are either
// global ("thread.edit") or category-scoped ("category12.thread.edit").
type GroupPermission struct {
	GroupID    int    `db:"group_id"`
	Permission string `db:"permission"`
}
