package perms

import (
	"context"
	"fmt"

	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/oops"
)

// Permission names checked throughout the forum. Each also has a
// category-scoped form, see Scoped.
const (
	ThreadCreate         = "thread.createThread"
	ThreadEdit           = "thread.edit"
	ThreadEditOwn        = "thread.editOwnThread"
	ThreadHide           = "thread.hide"
	ThreadHideOwn        = "thread.hideOwnThread"
	ThreadLike           = "thread.like"
	ThreadReply          = "thread.reply"
	ThreadEssence        = "thread.essence"
	ThreadSticky         = "thread.sticky"
	ThreadViewPosts      = "thread.viewPosts"
	ThreadIgnoreCreCheck = "thread.ignoreCreateValidate"
)

// Scoped returns the category-scoped form of a permission name. Capability
// checks consult both the global and the scoped form.
func Scoped(categoryID int, name string) string {
	return fmt.Sprintf("category%d.%s", categoryID, name)
}

// PermissionSet is the set of permission strings held by one group, loaded
// once and queried in memory. The zero value holds nothing.
type PermissionSet struct {
	all   bool
	names map[string]struct{}
}

// AdminPermissionSet holds every permission.
func AdminPermissionSet() PermissionSet {
	return PermissionSet{all: true}
}

func NewPermissionSet(names ...string) PermissionSet {
	set := PermissionSet{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		set.names[name] = struct{}{}
	}
	return set
}

// HasAny reports whether the set holds at least one of the given names.
func (s PermissionSet) HasAny(names ...string) bool {
	if s.all {
		return true
	}
	for _, name := range names {
		if _, ok := s.names[name]; ok {
			return true
		}
	}
	return false
}

// HasAnyScoped checks a permission in both its global and category-scoped
// form.
func (s PermissionSet) HasAnyScoped(categoryID int, name string) bool {
	return s.HasAny(name, Scoped(categoryID, name))
}

/*
Loads the permission set of a user's group. A nil user holds nothing; use
FetchGroupPermissions with models.GroupIDTourist for anonymous capability
checks instead. Administrators implicitly hold everything.
*/
func FetchUserPermissions(ctx context.Context, conn db.ConnOrTx, user *models.User) (PermissionSet, error) {
	if user == nil {
		return PermissionSet{}, nil
	}
	if user.IsAdmin() {
		return AdminPermissionSet(), nil
	}
	return FetchGroupPermissions(ctx, conn, user.GroupID)
}

func FetchGroupPermissions(ctx context.Context, conn db.ConnOrTx, groupID int) (PermissionSet, error) {
	if groupID == models.GroupIDAdmin {
		return AdminPermissionSet(), nil
	}

	names, err := db.QueryScalar[string](ctx, conn,
		`
		SELECT permission
		FROM group_permissions
		WHERE group_id = $1
		`,
		groupID,
	)
	if err != nil {
		return PermissionSet{}, oops.New(err, "failed to fetch permissions for group %d", groupID)
	}

	return NewPermissionSet(names...), nil
}
