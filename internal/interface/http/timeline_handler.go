package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/microbloghq/microblog/internal/application"
	"github.com/microbloghq/microblog/internal/domain/entity"
	"github.com/microbloghq/microblog/internal/interface/middleware"
	"github.com/microbloghq/microblog/pkg/pagination"
	"github.com/microbloghq/microblog/pkg/response"
	"github.com/microbloghq/microblog/pkg/validation"
)

type TimelineHandler struct {
	Svc    *application.TimelineService
	Logger *logrus.Logger
}

func NewTimelineHandler(svc *application.TimelineService, logger *logrus.Logger) *TimelineHandler {
	return &TimelineHandler{Svc: svc, Logger: logger}
}

type postView struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	UserID    string    `json:"user_id"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

func toPostViews(posts []entity.Post) []postView {
	out := make([]postView, len(posts))
	for i, p := range posts {
		out[i] = postView{ID: p.ID, Body: p.Body, UserID: p.UserID, Author: p.Author, CreatedAt: p.CreatedAt}
	}
	return out
}

// pageMeta is the renderer handoff: page pointers for prev/next navigation.
func pageMeta(p *pagination.Page[entity.Post]) gin.H {
	meta := gin.H{
		"page":     p.Number,
		"per_page": p.PerPage,
		"total":    p.Total,
		"pages":    p.Pages(),
	}
	if p.HasNext() {
		meta["next_page"] = p.NextPage()
	}
	if p.HasPrev() {
		meta["prev_page"] = p.PrevPage()
	}
	return meta
}

// pageParam parses the 1-indexed ?page= query value, defaulting to 1.
// Malformed values surface as a page-not-found, consistent with strict
// pagination.
func pageParam(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return page, true
}

type createPostRequest struct {
	Body string `json:"body" binding:"required,postbody"`
}

// Home GET /api/timeline?page=
func (h *TimelineHandler) Home(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	page, ok := pageParam(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, "page not found", nil)
		return
	}
	p, err := h.Svc.Home(c.Request.Context(), uid, page)
	if err != nil {
		h.feedError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPostViews(p.Items), "home", pageMeta(p))
}

// Explore GET /api/explore?page=
func (h *TimelineHandler) Explore(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, "page not found", nil)
		return
	}
	p, err := h.Svc.Explore(c.Request.Context(), page)
	if err != nil {
		h.feedError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPostViews(p.Items), "explore", pageMeta(p))
}

// CreatePost POST /api/posts
func (h *TimelineHandler) CreatePost(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.CreatePost(c.Request.Context(), uid, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrEmptyPost), errors.Is(err, application.ErrPostTooLong):
			response.Fail(c, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, application.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, "user not found", nil)
		default:
			h.internal(c, err)
		}
		return
	}
	response.Success(c, http.StatusCreated, postView{
		ID: p.ID, Body: p.Body, UserID: p.UserID, Author: p.Author, CreatedAt: p.CreatedAt,
	}, "post created", nil)
}

// UserPage GET /api/users/:username?page=
func (h *TimelineHandler) UserPage(c *gin.Context) {
	username := c.Param("username")
	viewerID := c.GetString(middleware.CtxUserIDKey)
	page, ok := pageParam(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, "page not found", nil)
		return
	}
	u, p, err := h.Svc.UserPage(c.Request.Context(), username, page)
	if err != nil {
		h.feedError(c, err)
		return
	}
	followers, following, err := h.Svc.FollowCounts(c.Request.Context(), u.ID)
	if err != nil {
		h.internal(c, err)
		return
	}
	isFollowing := false
	if viewerID != "" && viewerID != u.ID {
		ok, fErr := h.Svc.IsFollowing(c.Request.Context(), viewerID, u.ID)
		if fErr != nil {
			h.internal(c, fErr)
			return
		}
		isFollowing = ok
	}
	response.Success(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":         u.ID,
			"username":   u.Username,
			"about_me":   u.AboutMe,
			"avatar_url": u.AvatarURL,
			"last_seen":  u.LastSeen,
			"followers":  followers,
			"following":  following,
		},
		"is_following": isFollowing,
		"posts":        toPostViews(p.Items),
	}, u.Username, pageMeta(p))
}

// Follow POST /api/users/:username/follow
func (h *TimelineHandler) Follow(c *gin.Context) {
	h.mutateFollow(c, h.Svc.Follow, "you are now following")
}

// Unfollow DELETE /api/users/:username/follow
func (h *TimelineHandler) Unfollow(c *gin.Context) {
	h.mutateFollow(c, h.Svc.Unfollow, "you are no longer following")
}

func (h *TimelineHandler) mutateFollow(
	c *gin.Context,
	op func(ctx context.Context, actorID, username string) (*entity.User, error),
	notice string,
) {
	uid := c.GetString(middleware.CtxUserIDKey)
	username := c.Param("username")
	target, err := op(c.Request.Context(), uid, username)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, "user "+username+" not found", nil)
		case errors.Is(err, application.ErrSelfFollow):
			response.Fail(c, http.StatusBadRequest, "you cannot follow yourself", nil)
		default:
			h.internal(c, err)
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"username": target.Username}, notice+" "+target.Username, nil)
}

func (h *TimelineHandler) feedError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pagination.ErrPageNotFound):
		response.Fail(c, http.StatusNotFound, "page not found", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, "user not found", nil)
	default:
		h.internal(c, err)
	}
}

func (h *TimelineHandler) internal(c *gin.Context, err error) {
	if h.Logger != nil {
		h.Logger.WithError(err).Error("timeline request failed")
	}
	response.Fail(c, http.StatusInternalServerError, "internal error", nil)
}
