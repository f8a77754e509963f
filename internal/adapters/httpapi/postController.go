package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"snippets/internal/adapters/httpapi/middleware"
	"snippets/internal/core/apperr"
	"snippets/internal/core/feed"
	postapp "snippets/internal/core/post/service"
	"snippets/internal/core/session"
	"snippets/internal/core/submission"
	postPort "snippets/internal/ports/post"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	viewFeed  = "feed"
	viewWall  = "wall"
	viewAdmin = "admin"
)

type PostController struct {
	pc     PostUseCase
	guard  *feed.Guard
	logger *zap.Logger
}

// NewPostController takes the post use case as its input port.
func NewPostController(pc PostUseCase, guard *feed.Guard, logger *zap.Logger) *PostController {
	return &PostController{pc: pc, guard: guard, logger: logger}
}

// viewName is the listing a mutation was triggered from.
func viewName(c *gin.Context) string {
	v := c.Query("view")
	if v == "" {
		v = c.PostForm("view")
	}
	switch v {
	case viewWall, viewAdmin:
		return v
	}
	return viewFeed
}

func pathFor(view string) string {
	switch view {
	case viewWall:
		return "/my-wall"
	case viewAdmin:
		return "/admin"
	}
	return "/"
}

// listing builds the view a viewer may see under name. Views the viewer is
// not entitled to fall back to the global feed.
func listing(pc PostUseCase, sc *session.Context, name string) *feed.View {
	switch {
	case name == viewWall && sc.Authenticated():
		return feed.NewView(pc, postapp.WallFilter(sc.UserID()))
	case name == viewAdmin && sc.IsAdmin():
		return feed.NewView(pc, postPort.Filter{})
	}
	return feed.NewView(pc, postapp.GlobalFeedFilter(0))
}

func (ctl *PostController) create(ctx context.Context, sc *session.Context, sub submission.Submission) (string, feed.Notice, error) {
	id, err := ctl.pc.Submit(ctx, sc, sub)
	if err != nil {
		return "", feed.Failure(feed.ActionAdd, err), err
	}
	return id, feed.Success(feed.ActionAdd), nil
}

func (ctl *PostController) createFor(ctx context.Context, sc *session.Context, target string, sub submission.Submission) (string, feed.Notice, error) {
	id, err := ctl.pc.SubmitFor(ctx, sc, target, sub)
	if err != nil {
		return "", feed.Failure(feed.ActionAdminAdd, err), err
	}
	return id, feed.Success(feed.ActionAdminAdd), nil
}

func (ctl *PostController) save(ctx context.Context, sc *session.Context, postID string) (feed.Notice, error) {
	card := feed.NewCard(&postPort.PostDTO{ID: postID}, sc, ctl.pc, ctl.guard, false)
	return card.SaveToWall(ctx)
}

func (ctl *PostController) remove(ctx context.Context, sc *session.Context, postID string, adminContext bool) (feed.Notice, error) {
	if !sc.Authenticated() {
		return feed.Failure(feed.ActionDelete, apperr.ErrUnauthenticated), apperr.ErrUnauthenticated
	}
	p, err := ctl.pc.Post(ctx, postID)
	if err != nil {
		return feed.Failure(feed.ActionDelete, err), err
	}
	return feed.NewCard(p, sc, ctl.pc, ctl.guard, adminContext).Delete(ctx)
}

// respondMutation re-lists the originating view after a successful mutation
// and answers with the notice and the fresh posts.
func (ctl *PostController) respondMutation(c *gin.Context, status int, action feed.Action, id string, n feed.Notice, err error) {
	ctx := c.Request.Context()
	view := listing(ctl.pc, middleware.Session(c), viewName(c))
	if rerr := view.Refresh(ctx, err); rerr != nil {
		ctl.logger.Warn("refresh after mutation failed", zap.Error(rerr))
	}
	if err != nil {
		respondFailure(c, action, err)
		return
	}
	body := gin.H{"notice": n, "posts": view.Snapshot().Posts}
	if id != "" {
		body["id"] = id
	}
	c.JSON(status, body)
}

func (ctl *PostController) redirectWithNotice(c *gin.Context, n feed.Notice, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	setFlash(c, n)
	c.Redirect(http.StatusSeeOther, pathFor(viewName(c)))
}

type createPostRequest struct {
	ImageURL    string `json:"image_url"`
	ContentText string `json:"content_text"`
	UserID      string `json:"user_id"`
}

func (r createPostRequest) submission() submission.Submission {
	return submission.Submission{ImageURL: r.ImageURL, Caption: r.ContentText}
}

func formSubmission(c *gin.Context) submission.Submission {
	return submission.Submission{ImageURL: c.PostForm("image_url"), Caption: c.PostForm("content_text")}
}

// ListPosts serves the global feed; limit is capped at 100.
func (ctl *PostController) ListPosts(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	posts, err := feed.NewView(ctl.pc, postapp.GlobalFeedFilter(limit)).Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// ListWall serves the caller's wall.
func (ctl *PostController) ListWall(c *gin.Context) {
	posts, err := ctl.pc.Wall(c.Request.Context(), middleware.Session(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// ListAllPosts is the admin listing.
func (ctl *PostController) ListAllPosts(c *gin.Context) {
	posts, err := ctl.pc.AllPosts(c.Request.Context(), middleware.Session(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// ListProfiles is the admin users table.
func (ctl *PostController) ListProfiles(c *gin.Context) {
	profiles, err := ctl.pc.Profiles(c.Request.Context(), middleware.Session(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// CreatePost adds a snippet to the caller's wall.
func (ctl *PostController) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	id, n, err := ctl.create(c.Request.Context(), middleware.Session(c), req.submission())
	ctl.respondMutation(c, http.StatusCreated, feed.ActionAdd, id, n, err)
}

// AdminCreatePost adds a snippet to user_id's wall.
func (ctl *PostController) AdminCreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	id, n, err := ctl.createFor(c.Request.Context(), middleware.Session(c), req.UserID, req.submission())
	ctl.respondMutation(c, http.StatusCreated, feed.ActionAdminAdd, id, n, err)
}

// SavePost copies a post onto the caller's wall.
func (ctl *PostController) SavePost(c *gin.Context) {
	n, err := ctl.save(c.Request.Context(), middleware.Session(c), c.Param("id"))
	ctl.respondMutation(c, http.StatusCreated, feed.ActionSave, "", n, err)
}

// DeletePost removes a post; ?view=admin lets an admin remove any.
func (ctl *PostController) DeletePost(c *gin.Context) {
	n, err := ctl.remove(c.Request.Context(), middleware.Session(c), c.Param("id"), viewName(c) == viewAdmin)
	ctl.respondMutation(c, http.StatusOK, feed.ActionDelete, "", n, err)
}

// Form variants answer with a redirect and a flash notice.
func (ctl *PostController) CreatePostForm(c *gin.Context) {
	_, n, err := ctl.create(c.Request.Context(), middleware.Session(c), formSubmission(c))
	ctl.redirectWithNotice(c, n, err)
}

func (ctl *PostController) AdminCreatePostForm(c *gin.Context) {
	_, n, err := ctl.createFor(c.Request.Context(), middleware.Session(c), c.PostForm("user_id"), formSubmission(c))
	ctl.redirectWithNotice(c, n, err)
}

func (ctl *PostController) SavePostForm(c *gin.Context) {
	n, err := ctl.save(c.Request.Context(), middleware.Session(c), c.Param("id"))
	ctl.redirectWithNotice(c, n, err)
}

func (ctl *PostController) DeletePostForm(c *gin.Context) {
	n, err := ctl.remove(c.Request.Context(), middleware.Session(c), c.Param("id"), viewName(c) == viewAdmin)
	ctl.redirectWithNotice(c, n, err)
}
