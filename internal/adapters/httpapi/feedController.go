package httpapi

import (
	"net/http"

	"snippets/internal/adapters/httpapi/middleware"
	"snippets/internal/core/feed"
	"snippets/internal/core/session"
	postPort "snippets/internal/ports/post"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FeedController renders the HTML pages.
type FeedController struct {
	pc     PostUseCase
	guard  *feed.Guard
	logger *zap.Logger
}

// NewFeedController renders the HTML pages; guard is shared with the save handlers.
func NewFeedController(pc PostUseCase, guard *feed.Guard, logger *zap.Logger) *FeedController {
	return &FeedController{pc: pc, guard: guard, logger: logger}
}

// load returns nothing on failure; pages show their empty state.
func (ctl *FeedController) load(c *gin.Context, view *feed.View) []*postPort.PostDTO {
	posts, err := view.Load(c.Request.Context())
	if err != nil {
		ctl.logger.Warn("listing failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		return nil
	}
	return posts
}

func (ctl *FeedController) cards(posts []*postPort.PostDTO, sc *session.Context, adminContext bool) []*feed.Card {
	cards := make([]*feed.Card, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, feed.NewCard(p, sc, ctl.pc, ctl.guard, adminContext))
	}
	return cards
}

// Index renders the global feed with the add form for signed-in users.
func (ctl *FeedController) Index(c *gin.Context) {
	sc := middleware.Session(c)
	posts := ctl.load(c, listing(ctl.pc, sc, viewFeed))
	c.HTML(http.StatusOK, "index", pageData{
		Title:  "Explore",
		View:   viewFeed,
		Viewer: sc,
		Notice: takeFlash(c),
		Cards:  ctl.cards(posts, sc, false),
		Empty:  "No snippets yet. Be the first to add one!",
	})
}

// MyWall renders the caller's own posts; signed-out visitors go to /auth.
func (ctl *FeedController) MyWall(c *gin.Context) {
	sc := middleware.Session(c)
	u, ok := sc.User()
	if !ok {
		c.Redirect(http.StatusFound, "/auth")
		return
	}
	heading := "My Wall"
	if u.DisplayName != nil && *u.DisplayName != "" {
		heading = *u.DisplayName
	}
	posts := ctl.load(c, listing(ctl.pc, sc, viewWall))
	c.HTML(http.StatusOK, "wall", pageData{
		Title:   "My Wall",
		View:    viewWall,
		Viewer:  sc,
		Notice:  takeFlash(c),
		Cards:   ctl.cards(posts, sc, false),
		Heading: heading,
		Empty:   "Your wall is empty. Save snippets from the feed to see them here.",
	})
}

// Admin sends signed-out visitors to sign in and everyone else who is not an
// administrator back to the feed, without loading any admin data.
func (ctl *FeedController) Admin(c *gin.Context) {
	sc := middleware.Session(c)
	if !sc.Authenticated() {
		c.Redirect(http.StatusFound, "/auth")
		return
	}
	if !sc.IsAdmin() {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ctx := c.Request.Context()
	posts, err := ctl.pc.AllPosts(ctx, sc)
	if err != nil {
		ctl.logger.Warn("admin listing failed", zap.Error(err))
	}
	profiles, err := ctl.pc.Profiles(ctx, sc)
	if err != nil {
		ctl.logger.Warn("admin profiles failed", zap.Error(err))
	}
	c.HTML(http.StatusOK, "admin", pageData{
		Title:    "Admin",
		View:     viewAdmin,
		Viewer:   sc,
		Notice:   takeFlash(c),
		Cards:    ctl.cards(posts, sc, true),
		Profiles: profiles,
		Empty:    "No snippets yet.",
	})
}

// Auth renders sign-in, or sign-up with ?mode=signup.
func (ctl *FeedController) Auth(c *gin.Context) {
	sc := middleware.Session(c)
	if sc.Authenticated() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	signup := c.Query("mode") == "signup"
	title := "Sign In"
	if signup {
		title = "Get Started"
	}
	c.HTML(http.StatusOK, "auth", pageData{
		Title:  title,
		Viewer: sc,
		Notice: takeFlash(c),
		Signup: signup,
	})
}
