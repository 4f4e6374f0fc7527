package forumdata

import (
	"context"
	"time"

	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/mdcontent"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/perms"
)

/*
ThreadView is a thread as one particular viewer sees it: the thread row
joined with its first post's content and author, plus the capability flags
the client uses to decide which controls to show. Hidden content has already
been filtered out of Content when the viewer is not entitled to it.
*/
type ThreadView struct {
	ID               int                   `json:"id"`
	UserID           int                   `json:"user_id"`
	LastPostedUserID *int                  `json:"last_posted_user_id"`
	CategoryID       int                   `json:"category_id"`
	FirstPostID      *int                  `json:"first_post_id"`
	IsApproved       models.ThreadApproval `json:"is_approved"`
	IsSticky         bool                  `json:"is_sticky"`
	IsEssence        bool                  `json:"is_essence"`
	IsDraft          bool                  `json:"is_draft"`
	DisablePost      bool                  `json:"disable_post"`
	Title            string                `json:"title"`
	PostCount        int                   `json:"post_count"`
	ViewCount        int                   `json:"view_count"`
	PostedAt         time.Time             `json:"posted_at"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	ModifiedAt       time.Time             `json:"modified_at"`

	Content    string           `json:"content"`
	User       *models.UserView `json:"user"`
	LikeCount  int              `json:"like_count"`
	ReplyCount int              `json:"reply_count"`

	IsLiked           bool `json:"is_liked"`
	CanEdit           bool `json:"can_edit"`
	CanHide           bool `json:"can_hide"`
	CanLike           bool `json:"can_like"`
	CanReply          bool `json:"can_reply"`
	CanEssence        bool `json:"can_essence"`
	CanSticky         bool `json:"can_sticky"`
	CanSetDisablePost bool `json:"can_set_disable_post"`
	CanViewPosts      bool `json:"can_view_posts"`
}

// ThreadViewOptions tweaks view projection. The zero value is the default:
// like status included.
type ThreadViewOptions struct {
	// Skips the per-viewer like lookup; IsLiked comes out false. For list
	// pages that don't render like state.
	WithoutLikeStatus bool
}

/*
Reports whether a user may edit a thread. The author can always edit their
own drafts; published threads require the edit-own permission for the
author, or the edit permission (global or scoped to the thread's category)
for anyone else.

A nil viewer can never edit.
*/
func CanEditThread(thread *models.Thread, viewer *models.User, viewerPerms perms.PermissionSet) bool {
	if viewer == nil {
		return false
	}
	if thread.UserID == viewer.ID {
		if thread.IsDraft {
			return true
		}
		if viewerPerms.HasAnyScoped(thread.CategoryID, perms.ThreadEditOwn) {
			return true
		}
	}
	return viewerPerms.HasAnyScoped(thread.CategoryID, perms.ThreadEdit)
}

// Same shape as CanEditThread, for hiding. Drafts grant the author nothing
// extra here; hiding a draft is just deleting it.
func CanHideThread(thread *models.Thread, viewer *models.User, viewerPerms perms.PermissionSet) bool {
	if viewer == nil {
		return false
	}
	if thread.UserID == viewer.ID && viewerPerms.HasAnyScoped(thread.CategoryID, perms.ThreadHideOwn) {
		return true
	}
	return viewerPerms.HasAnyScoped(thread.CategoryID, perms.ThreadHide)
}

// Everything view assembly needs. Gathered by FetchThreadView, but tests
// can fill it in directly.
type threadViewData struct {
	Thread    *models.Thread
	FirstPost *models.Post // nil for legacy threads with no first post
	Author    *models.User // nil when the author account is gone

	Viewer      *models.User
	ViewerPerms perms.PermissionSet
	// Permissions of the anonymous group. Only consulted when Viewer is nil.
	TouristPerms perms.PermissionSet

	HasReplied bool
	IsLiked    bool
}

func assembleThreadView(data threadViewData, opts ThreadViewOptions) ThreadView {
	thread := data.Thread

	content := ""
	likeCount := 0
	replyCount := 0
	if data.FirstPost != nil {
		content = data.FirstPost.Content
		likeCount = data.FirstPost.LikeCount
		replyCount = data.FirstPost.ReplyCount
	}

	canEdit := CanEditThread(thread, data.Viewer, data.ViewerPerms)
	if mdcontent.HasReplyHiddenContent(content) && !canEdit && !data.HasReplied {
		content = mdcontent.FilterHiddenContent(content)
	}

	canViewPosts := false
	if data.Viewer != nil {
		canViewPosts = data.ViewerPerms.HasAnyScoped(thread.CategoryID, perms.ThreadViewPosts)
	} else {
		canViewPosts = data.TouristPerms.HasAnyScoped(thread.CategoryID, perms.ThreadViewPosts)
	}

	view := ThreadView{
		ID:               thread.ID,
		UserID:           thread.UserID,
		LastPostedUserID: thread.LastPostedUserID,
		CategoryID:       thread.CategoryID,
		FirstPostID:      thread.FirstPostID,
		IsApproved:       thread.IsApproved,
		IsSticky:         thread.IsSticky,
		IsEssence:        thread.IsEssence,
		IsDraft:          thread.IsDraft,
		DisablePost:      thread.DisablePost,
		Title:            thread.Title,
		PostCount:        thread.PostCount,
		ViewCount:        thread.ViewCount,
		PostedAt:         thread.PostedAt,
		CreatedAt:        thread.CreatedAt,
		UpdatedAt:        thread.UpdatedAt,
		ModifiedAt:       thread.DisplayModifiedAt(),

		Content:    content,
		LikeCount:  likeCount,
		ReplyCount: replyCount,

		IsLiked:      !opts.WithoutLikeStatus && data.IsLiked,
		CanEdit:      canEdit,
		CanHide:      CanHideThread(thread, data.Viewer, data.ViewerPerms),
		CanViewPosts: canViewPosts,
	}
	if data.Author != nil {
		authorView := data.Author.View()
		view.User = &authorView
	}
	if data.Viewer != nil {
		view.CanLike = data.ViewerPerms.HasAnyScoped(thread.CategoryID, perms.ThreadLike)
		view.CanReply = data.ViewerPerms.HasAnyScoped(thread.CategoryID, perms.ThreadReply)
		view.CanEssence = data.ViewerPerms.HasAnyScoped(thread.CategoryID, perms.ThreadEssence)
		view.CanSticky = data.ViewerPerms.HasAnyScoped(thread.CategoryID, perms.ThreadSticky)
		view.CanSetDisablePost = data.Viewer.IsAdmin()
	}

	return view
}

/*
Fetches a thread and projects it for the given viewer (nil for anonymous).
Drafts and deleted threads are only visible to viewers who could edit or
hide them, respectively; everyone else gets db.NotFound.

The first post lookup may backfill first_post_id on legacy rows, see
ResolveFirstPost.
*/
func FetchThreadView(
	ctx context.Context,
	dbConn db.ConnOrTx,
	viewer *models.User,
	threadID int,
	opts ThreadViewOptions,
) (*ThreadView, error) {
	thread, err := FetchThread(ctx, dbConn, threadID)
	if err != nil {
		return nil, err
	}

	viewerPerms, err := perms.FetchUserPermissions(ctx, dbConn, viewer)
	if err != nil {
		return nil, err
	}

	if thread.IsDraft && (viewer == nil || viewer.ID != thread.UserID) {
		return nil, db.NotFound
	}
	if thread.IsDeleted() && !CanHideThread(thread, viewer, viewerPerms) {
		return nil, db.NotFound
	}

	var touristPerms perms.PermissionSet
	if viewer == nil {
		touristPerms, err = perms.FetchGroupPermissions(ctx, dbConn, models.GroupIDTourist)
		if err != nil {
			return nil, err
		}
	}

	firstPost, err := ResolveFirstPost(ctx, dbConn, thread)
	if err != nil {
		return nil, err
	}

	var author *models.User
	author, err = FetchUser(ctx, dbConn, thread.UserID)
	if err != nil {
		if err != db.NotFound {
			return nil, err
		}
		author = nil
	}

	data := threadViewData{
		Thread:       thread,
		FirstPost:    firstPost,
		Author:       author,
		Viewer:       viewer,
		ViewerPerms:  viewerPerms,
		TouristPerms: touristPerms,
	}

	// The reply lookup only matters when there is hidden content the viewer
	// might unlock, so skip the query otherwise.
	if viewer != nil && firstPost != nil &&
		mdcontent.HasReplyHiddenContent(firstPost.Content) &&
		!CanEditThread(thread, viewer, viewerPerms) {
		data.HasReplied, err = UserHasRepliedToThread(ctx, dbConn, viewer.ID, thread.ID)
		if err != nil {
			return nil, err
		}
	}

	if viewer != nil && firstPost != nil && !opts.WithoutLikeStatus {
		data.IsLiked, err = HasUserLikedPost(ctx, dbConn, viewer.ID, firstPost.ID)
		if err != nil {
			return nil, err
		}
	}

	view := assembleThreadView(data, opts)
	return &view, nil
}
