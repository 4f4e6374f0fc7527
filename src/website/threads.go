package website

import (
	"net/http"
	"strconv"
	"time"

	"git.mbbs.network/mbbs/mbbs/src/db"
	"git.mbbs.network/mbbs/mbbs/src/forumdata"
	"git.mbbs.network/mbbs/mbbs/src/htmltransform"
	"git.mbbs.network/mbbs/mbbs/src/mdcontent"
	"git.mbbs.network/mbbs/mbbs/src/models"
	"git.mbbs.network/mbbs/mbbs/src/oops"
	"git.mbbs.network/mbbs/mbbs/src/perms"
	"git.mbbs.network/mbbs/mbbs/src/utils"
)

const threadsPerPage = 20
const threadsPerUserPerDay = 30
const threadListExcerptLength = 120

func (c *RequestContext) pathParamInt(name string) (int, bool) {
	val, err := strconv.Atoi(c.PathParams[name])
	if err != nil {
		return 0, false
	}
	return val, true
}

type threadListItem struct {
	ID               int                   `json:"id"`
	CategoryID       int                   `json:"category_id"`
	Title            string                `json:"title"`
	Excerpt          string                `json:"excerpt"`
	User             *models.UserView      `json:"user"`
	IsApproved       models.ThreadApproval `json:"is_approved"`
	IsSticky         bool                  `json:"is_sticky"`
	IsEssence        bool                  `json:"is_essence"`
	PostCount        int                   `json:"post_count"`
	ViewCount        int                   `json:"view_count"`
	PostedAt         time.Time             `json:"posted_at"`
	CreatedAt        time.Time             `json:"created_at"`
	ModifiedAt       time.Time             `json:"modified_at"`
	LastPostedUserID *int                  `json:"last_posted_user_id"`
}

func (s *websiteRoutes) ThreadList(c *RequestContext) ResponseData {
	q := forumdata.ThreadsQuery{
		ApprovalStates: []models.ThreadApproval{models.ThreadApprovalOk},
		Limit:          threadsPerPage,
	}

	if categoryStr := c.Req.URL.Query().Get("category"); categoryStr != "" {
		categoryID, err := strconv.Atoi(categoryStr)
		if err != nil {
			return c.RejectRequest(http.StatusBadRequest, "bad category id")
		}
		q.CategoryIDs = []int{categoryID}
	}

	page := 1
	if pageStr := c.Req.URL.Query().Get("page"); pageStr != "" {
		var err error
		page, err = strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return c.RejectRequest(http.StatusBadRequest, "bad page number")
		}
	}
	q.Offset = (page - 1) * threadsPerPage

	threads, err := forumdata.FetchThreads(c, c.Conn, q)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	total, err := forumdata.CountThreads(c, c.Conn, q)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	items := make([]threadListItem, len(threads))
	for i, row := range threads {
		thread := row.Thread
		item := threadListItem{
			ID:               thread.ID,
			CategoryID:       thread.CategoryID,
			Title:            thread.Title,
			Excerpt:          utils.TruncateString(thread.ContentForIndexes, threadListExcerptLength),
			IsApproved:       thread.IsApproved,
			IsSticky:         thread.IsSticky,
			IsEssence:        thread.IsEssence,
			PostCount:        thread.PostCount,
			ViewCount:        thread.ViewCount,
			PostedAt:         thread.PostedAt,
			CreatedAt:        thread.CreatedAt,
			ModifiedAt:       thread.DisplayModifiedAt(),
			LastPostedUserID: thread.LastPostedUserID,
		}
		if row.Author != nil {
			authorView := row.Author.View()
			item.User = &authorView
		}
		items[i] = item
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"threads":   items,
		"page":      page,
		"num_pages": utils.NumPages(total, threadsPerPage),
		"total":     total,
	})
	return res
}

func (s *websiteRoutes) ThreadGet(c *RequestContext) ResponseData {
	threadID, ok := c.pathParamInt("id")
	if !ok {
		return FourOhFour(c)
	}

	view, err := forumdata.FetchThreadView(c, c.Conn, c.CurrentUser, threadID, forumdata.ThreadViewOptions{})
	if err != nil {
		if err == db.NotFound {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	// View counting is best effort and not worth failing the request over.
	_, err = c.Conn.Exec(c, `UPDATE threads SET view_count = view_count + 1 WHERE id = $1`, threadID)
	if err != nil {
		c.Logger.Warn().Err(err).Int("thread", threadID).Msg("failed to bump view count")
	}
	c.ThreadCache.Invalidate(threadID)

	if c.Req.URL.Query().Get("format") == "html" {
		rendered := mdcontent.RenderMarkdown(view.Content)
		view.Content = htmltransform.WillRenderHTML(rendered, htmltransform.RenderOptions{
			TransformAttachmentLinks: true,
			Viewer:                   c.CurrentUser,
		})
	}

	var res ResponseData
	res.WriteJson(view)
	return res
}

func (s *websiteRoutes) ThreadCreate(c *RequestContext) ResponseData {
	var input struct {
		CategoryID int    `json:"category_id"`
		Title      string `json:"title"`
		Content    string `json:"content"`
		IsDraft    bool   `json:"is_draft"`
	}
	err := c.DecodeJSON(&input)
	if err != nil || input.Title == "" || input.Content == "" || input.CategoryID == 0 {
		return c.RejectRequest(http.StatusBadRequest, "you must provide a category, title, and content")
	}

	_, err = forumdata.FetchCategory(c, c.Conn, input.CategoryID)
	if err != nil {
		if err == db.NotFound {
			return c.RejectRequest(http.StatusBadRequest, "no such category")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	userPerms, err := perms.FetchUserPermissions(c, c.Conn, c.CurrentUser)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if !userPerms.HasAnyScoped(input.CategoryID, perms.ThreadCreate) {
		return c.RejectRequest(http.StatusForbidden, "you are not allowed to create threads here")
	}

	if !userPerms.HasAny(perms.ThreadIgnoreCreCheck) {
		createdToday, err := forumdata.CountThreadsCreatedToday(c, c.Conn, c.CurrentUser.ID, nil)
		if err != nil {
			return c.ErrorResponse(http.StatusInternalServerError, err)
		}
		if createdToday >= threadsPerUserPerDay {
			return c.RejectRequest(http.StatusTooManyRequests, "you have created too many threads today")
		}
	}

	approval := models.ThreadApprovalOk
	if c.CurrentUser.Status == models.UserStatusChecking {
		approval = models.ThreadApprovalChecking
	}

	thread, _, err := forumdata.CreateThread(c, c.Conn, forumdata.CreateThreadInput{
		UserID:     c.CurrentUser.ID,
		CategoryID: input.CategoryID,
		Title:      input.Title,
		Content:    input.Content,
		IsDraft:    input.IsDraft,
		Approval:   approval,
	})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	outcome := forumdata.RefreshThreadCounters(c, c.Conn, thread)

	view, err := forumdata.FetchThreadView(c, c.Conn, c.CurrentUser, thread.ID, forumdata.ThreadViewOptions{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.StatusCode = http.StatusCreated
	res.WriteJson(map[string]any{
		"thread":   view,
		"counters": outcome.String(),
	})
	return res
}

func (s *websiteRoutes) ThreadReply(c *RequestContext) ResponseData {
	threadID, ok := c.pathParamInt("id")
	if !ok {
		return FourOhFour(c)
	}

	var input struct {
		Content string `json:"content"`
	}
	err := c.DecodeJSON(&input)
	if err != nil || input.Content == "" {
		return c.RejectRequest(http.StatusBadRequest, "you must provide content")
	}

	thread, err := s.fetchLiveThread(c, threadID)
	if err != nil {
		if err == db.NotFound {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	userPerms, err := perms.FetchUserPermissions(c, c.Conn, c.CurrentUser)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if !userPerms.HasAnyScoped(thread.CategoryID, perms.ThreadReply) {
		return c.RejectRequest(http.StatusForbidden, "you are not allowed to reply here")
	}

	post, err := forumdata.CreatePostReply(c, c.Conn, thread, c.CurrentUser.ID, input.Content)
	if err != nil {
		if err == forumdata.ErrPostingDisabled {
			return c.RejectRequest(http.StatusForbidden, "replies are disabled for this thread")
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	c.ThreadCache.Invalidate(threadID)

	var res ResponseData
	res.StatusCode = http.StatusCreated
	res.WriteJson(post)
	return res
}

func (s *websiteRoutes) ThreadEdit(c *RequestContext) ResponseData {
	threadID, ok := c.pathParamInt("id")
	if !ok {
		return FourOhFour(c)
	}

	var input struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	err := c.DecodeJSON(&input)
	if err != nil || input.Title == "" || input.Content == "" {
		return c.RejectRequest(http.StatusBadRequest, "you must provide a title and content")
	}

	thread, err := s.fetchLiveThread(c, threadID)
	if err != nil {
		if err == db.NotFound {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	userPerms, err := perms.FetchUserPermissions(c, c.Conn, c.CurrentUser)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if !forumdata.CanEditThread(thread, c.CurrentUser, userPerms) {
		return c.RejectRequest(http.StatusForbidden, "you are not allowed to edit this thread")
	}

	err = forumdata.EditThreadContent(c, c.Conn, thread, c.CurrentUser.ID, input.Title, input.Content)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	c.ThreadCache.Invalidate(threadID)

	view, err := forumdata.FetchThreadView(c, c.Conn, c.CurrentUser, threadID, forumdata.ThreadViewOptions{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(view)
	return res
}

func (s *websiteRoutes) ThreadDelete(c *RequestContext) ResponseData {
	threadID, ok := c.pathParamInt("id")
	if !ok {
		return FourOhFour(c)
	}

	thread, err := s.fetchLiveThread(c, threadID)
	if err != nil {
		if err == db.NotFound {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	userPerms, err := perms.FetchUserPermissions(c, c.Conn, c.CurrentUser)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if !forumdata.CanHideThread(thread, c.CurrentUser, userPerms) {
		return c.RejectRequest(http.StatusForbidden, "you are not allowed to delete this thread")
	}

	err = forumdata.SoftDeleteThread(c, c.Conn, threadID, c.CurrentUser.ID)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	outcome := forumdata.RefreshThreadCounters(c, c.Conn, thread)
	c.ThreadCache.Invalidate(threadID)

	var res ResponseData
	res.WriteJson(map[string]any{
		"deleted":  true,
		"counters": outcome.String(),
	})
	return res
}

func (s *websiteRoutes) ThreadLike(c *RequestContext) ResponseData {
	threadID, ok := c.pathParamInt("id")
	if !ok {
		return FourOhFour(c)
	}

	var input struct {
		Liked bool `json:"liked"`
	}
	err := c.DecodeJSON(&input)
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "bad request body")
	}

	thread, err := s.fetchLiveThread(c, threadID)
	if err != nil {
		if err == db.NotFound {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	userPerms, err := perms.FetchUserPermissions(c, c.Conn, c.CurrentUser)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if !userPerms.HasAnyScoped(thread.CategoryID, perms.ThreadLike) {
		return c.RejectRequest(http.StatusForbidden, "you are not allowed to like threads here")
	}

	firstPost, err := forumdata.ResolveFirstPost(c, c.Conn, thread)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	if firstPost == nil {
		return FourOhFour(c)
	}

	err = forumdata.SetPostLiked(c, c.Conn, c.CurrentUser.ID, firstPost.ID, input.Liked)
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}
	c.ThreadCache.Invalidate(threadID)

	var res ResponseData
	res.WriteJson(map[string]any{"liked": input.Liked})
	return res
}

func (s *websiteRoutes) ThreadModerate(c *RequestContext) ResponseData {
	threadID, ok := c.pathParamInt("id")
	if !ok {
		return FourOhFour(c)
	}

	var input struct {
		IsApproved  *models.ThreadApproval `json:"is_approved"`
		IsSticky    *bool                  `json:"is_sticky"`
		IsEssence   *bool                  `json:"is_essence"`
		DisablePost *bool                  `json:"disable_post"`
	}
	err := c.DecodeJSON(&input)
	if err != nil {
		return c.RejectRequest(http.StatusBadRequest, "bad request body")
	}

	thread, err := forumdata.FetchThread(c, c.Conn, threadID)
	if err != nil {
		if err == db.NotFound {
			return FourOhFour(c)
		}
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	err = forumdata.ModerateThread(c, c.Conn, threadID, forumdata.ModerationUpdate{
		Approval:    input.IsApproved,
		IsSticky:    input.IsSticky,
		IsEssence:   input.IsEssence,
		DisablePost: input.DisablePost,
	})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	// Approval changes move threads in and out of the public counts.
	outcome := forumdata.RefreshThreadCounters(c, c.Conn, thread)
	c.ThreadCache.Invalidate(threadID)

	view, err := forumdata.FetchThreadView(c, c.Conn, c.CurrentUser, threadID, forumdata.ThreadViewOptions{})
	if err != nil {
		return c.ErrorResponse(http.StatusInternalServerError, err)
	}

	var res ResponseData
	res.WriteJson(map[string]any{
		"thread":   view,
		"counters": outcome.String(),
	})
	return res
}

// Fetches a thread through the cache and rejects deleted ones and other
// people's drafts with db.NotFound.
func (s *websiteRoutes) fetchLiveThread(c *RequestContext, threadID int) (*models.Thread, error) {
	thread, err := c.ThreadCache.Fetch(c, c.Conn, threadID)
	if err != nil {
		if err == db.NotFound {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch thread %d", threadID)
	}
	if thread.IsDeleted() {
		return nil, db.NotFound
	}
	if thread.IsDraft && (c.CurrentUser == nil || c.CurrentUser.ID != thread.UserID) {
		return nil, db.NotFound
	}
	return thread, nil
}
