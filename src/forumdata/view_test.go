package forumdata

import (
	"testing"
	"time"

	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/perms"
	"github.com/stretchr/testify/assert"
)

func makeThread() *models.Thread {
	return &models.Thread{
		ID:         10,
		UserID:     1,
		CategoryID: 3,
		IsApproved: models.ThreadApprovalOk,
		Title:      "hello",
		PostCount:  1,
		CreatedAt:  time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
		PostedAt:   time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCanEditThread(t *testing.T) {
	author := &models.User{ID: 1}
	stranger := &models.User{ID: 2}

	t.Run("anonymous can never edit", func(t *testing.T) {
		assert.False(t, CanEditThread(makeThread(), nil, perms.AdminPermissionSet()))
	})

	t.Run("author can always edit own draft", func(t *testing.T) {
		thread := makeThread()
		thread.IsDraft = true
		assert.True(t, CanEditThread(thread, author, perms.NewPermissionSet()))
	})

	t.Run("draft does not open up to others", func(t *testing.T) {
		thread := makeThread()
		thread.IsDraft = true
		assert.False(t, CanEditThread(thread, stranger, perms.NewPermissionSet()))
	})

	t.Run("author needs edit-own for published threads", func(t *testing.T) {
		assert.False(t, CanEditThread(makeThread(), author, perms.NewPermissionSet()))
		assert.True(t, CanEditThread(makeThread(), author,
			perms.NewPermissionSet(perms.ThreadEditOwn)))
	})

	t.Run("category-scoped edit-own counts", func(t *testing.T) {
		set := perms.NewPermissionSet(perms.Scoped(3, perms.ThreadEditOwn))
		assert.True(t, CanEditThread(makeThread(), author, set))

		otherCategory := perms.NewPermissionSet(perms.Scoped(4, perms.ThreadEditOwn))
		assert.False(t, CanEditThread(makeThread(), author, otherCategory))
	})

	t.Run("moderator edit permission works on any thread", func(t *testing.T) {
		set := perms.NewPermissionSet(perms.ThreadEdit)
		assert.True(t, CanEditThread(makeThread(), stranger, set))
	})

	t.Run("admin can edit everything", func(t *testing.T) {
		assert.True(t, CanEditThread(makeThread(), stranger, perms.AdminPermissionSet()))
	})
}

func TestCanHideThread(t *testing.T) {
	author := &models.User{ID: 1}
	stranger := &models.User{ID: 2}

	t.Run("anonymous can never hide", func(t *testing.T) {
		assert.False(t, CanHideThread(makeThread(), nil, perms.AdminPermissionSet()))
	})

	t.Run("draft grants the author nothing here", func(t *testing.T) {
		thread := makeThread()
		thread.IsDraft = true
		assert.False(t, CanHideThread(thread, author, perms.NewPermissionSet()))
	})

	t.Run("author with hide-own", func(t *testing.T) {
		set := perms.NewPermissionSet(perms.ThreadHideOwn)
		assert.True(t, CanHideThread(makeThread(), author, set))
		assert.False(t, CanHideThread(makeThread(), stranger, set))
	})

	t.Run("moderator hide permission", func(t *testing.T) {
		set := perms.NewPermissionSet(perms.ThreadHide)
		assert.True(t, CanHideThread(makeThread(), stranger, set))
	})
}

func TestAssembleThreadView(t *testing.T) {
	author := &models.User{ID: 1, Username: "alice", GroupID: 2}
	firstPost := &models.Post{
		ID:        100,
		ThreadID:  10,
		UserID:    1,
		IsFirst:   true,
		Content:   "plain content",
		LikeCount: 4,
	}

	base := func() threadViewData {
		thread := makeThread()
		firstPostID := firstPost.ID
		thread.FirstPostID = &firstPostID
		return threadViewData{
			Thread:    thread,
			FirstPost: firstPost,
			Author:    author,
		}
	}

	t.Run("anonymous viewer gets no capabilities", func(t *testing.T) {
		view := assembleThreadView(base(), ThreadViewOptions{})
		assert.False(t, view.CanEdit)
		assert.False(t, view.CanHide)
		assert.False(t, view.CanLike)
		assert.False(t, view.CanReply)
		assert.False(t, view.CanEssence)
		assert.False(t, view.CanSticky)
		assert.False(t, view.CanSetDisablePost)
		assert.False(t, view.IsLiked)
		assert.Equal(t, "plain content", view.Content)
		assert.Equal(t, 4, view.LikeCount)
	})

	t.Run("anonymous view posts comes from the tourist group", func(t *testing.T) {
		data := base()
		data.TouristPerms = perms.NewPermissionSet(perms.ThreadViewPosts)
		view := assembleThreadView(data, ThreadViewOptions{})
		assert.True(t, view.CanViewPosts)
	})

	t.Run("tourist permissions are ignored for signed-in viewers", func(t *testing.T) {
		data := base()
		data.Viewer = &models.User{ID: 2, GroupID: 2}
		data.TouristPerms = perms.NewPermissionSet(perms.ThreadViewPosts)
		view := assembleThreadView(data, ThreadViewOptions{})
		assert.False(t, view.CanViewPosts)
	})

	t.Run("admin viewer gets the full flag set", func(t *testing.T) {
		data := base()
		data.Viewer = &models.User{ID: 2, GroupID: models.GroupIDAdmin}
		data.ViewerPerms = perms.AdminPermissionSet()
		view := assembleThreadView(data, ThreadViewOptions{})
		assert.True(t, view.CanEdit)
		assert.True(t, view.CanHide)
		assert.True(t, view.CanLike)
		assert.True(t, view.CanReply)
		assert.True(t, view.CanEssence)
		assert.True(t, view.CanSticky)
		assert.True(t, view.CanSetDisablePost)
		assert.True(t, view.CanViewPosts)
	})

	t.Run("like status honors the option", func(t *testing.T) {
		data := base()
		data.Viewer = &models.User{ID: 2, GroupID: 2}
		data.IsLiked = true

		view := assembleThreadView(data, ThreadViewOptions{})
		assert.True(t, view.IsLiked)

		view = assembleThreadView(data, ThreadViewOptions{WithoutLikeStatus: true})
		assert.False(t, view.IsLiked)
	})

	t.Run("modified_at falls back to created_at", func(t *testing.T) {
		data := base()
		view := assembleThreadView(data, ThreadViewOptions{})
		assert.Equal(t, data.Thread.CreatedAt, view.ModifiedAt)

		edited := time.Date(2023, 6, 1, 8, 0, 0, 0, time.UTC)
		data.Thread.ModifiedAt = &edited
		view = assembleThreadView(data, ThreadViewOptions{})
		assert.Equal(t, edited, view.ModifiedAt)
	})

	t.Run("legacy thread without first post renders empty", func(t *testing.T) {
		data := base()
		data.Thread.FirstPostID = nil
		data.FirstPost = nil
		view := assembleThreadView(data, ThreadViewOptions{})
		assert.Equal(t, "", view.Content)
		assert.Equal(t, 0, view.LikeCount)
	})

	t.Run("deleted author leaves user nil", func(t *testing.T) {
		data := base()
		data.Author = nil
		view := assembleThreadView(data, ThreadViewOptions{})
		assert.Nil(t, view.User)
	})
}

func TestAssembleThreadViewHiddenContent(t *testing.T) {
	content := "intro\n\n> ![^mbbs_reply_visible_tag^](tag)\n> secret\n\noutro"
	author := &models.User{ID: 1, GroupID: 2}

	data := func(viewer *models.User) threadViewData {
		thread := makeThread()
		post := &models.Post{ID: 100, ThreadID: 10, UserID: 1, IsFirst: true, Content: content}
		thread.FirstPostID = &post.ID
		return threadViewData{
			Thread:    thread,
			FirstPost: post,
			Author:    author,
			Viewer:    viewer,
		}
	}

	t.Run("filtered for anonymous viewers", func(t *testing.T) {
		view := assembleThreadView(data(nil), ThreadViewOptions{})
		assert.NotContains(t, view.Content, "secret")
		assert.Contains(t, view.Content, "隐藏内容")
	})

	t.Run("filtered for viewers who have not replied", func(t *testing.T) {
		d := data(&models.User{ID: 2, GroupID: 2})
		view := assembleThreadView(d, ThreadViewOptions{})
		assert.NotContains(t, view.Content, "secret")
	})

	t.Run("kept for viewers who replied", func(t *testing.T) {
		d := data(&models.User{ID: 2, GroupID: 2})
		d.HasReplied = true
		view := assembleThreadView(d, ThreadViewOptions{})
		assert.Contains(t, view.Content, "secret")
		assert.NotContains(t, view.Content, "隐藏内容")
	})

	t.Run("kept for viewers who can edit", func(t *testing.T) {
		d := data(&models.User{ID: 1, GroupID: 2})
		d.ViewerPerms = perms.NewPermissionSet(perms.ThreadEditOwn)
		view := assembleThreadView(d, ThreadViewOptions{})
		assert.Contains(t, view.Content, "secret")
	})

	t.Run("surrounding content survives filtering", func(t *testing.T) {
		view := assembleThreadView(data(nil), ThreadViewOptions{})
		assert.Contains(t, view.Content, "intro")
		assert.Contains(t, view.Content, "outro")
	})
}
