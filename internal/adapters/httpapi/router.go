package httpapi

import (
	"context"
	"net/http"

	"snippets/internal/adapters/httpapi/middleware"
	"snippets/internal/core/feed"
	"snippets/internal/core/session"
	"snippets/internal/core/submission"
	postPort "snippets/internal/ports/post"
	userPort "snippets/internal/ports/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// UserUseCase is what the auth handlers need from the user service.
type UserUseCase interface {
	LoginUser(ctx context.Context, email, password string) (*userPort.LoginResponse, error)
	RegisterUser(ctx context.Context, email, password, displayName string) (*userPort.UserDTO, error)
}

type PostUseCase interface {
	feed.Lister
	feed.Actions
	Post(ctx context.Context, postID string) (*postPort.PostDTO, error)
	GlobalFeed(ctx context.Context, limit int) ([]*postPort.PostDTO, error)
	Wall(ctx context.Context, actor postPort.Actor) ([]*postPort.PostDTO, error)
	AllPosts(ctx context.Context, actor postPort.Actor) ([]*postPort.PostDTO, error)
	Profiles(ctx context.Context, actor postPort.Actor) ([]*postPort.ProfileDTO, error)
	Submit(ctx context.Context, actor postPort.Actor, sub submission.Submission) (string, error)
	SubmitFor(ctx context.Context, actor postPort.Actor, targetUserID string, sub submission.Submission) (string, error)
}

type Options struct {
	CORSOrigins   []string
	RateLimiter   *middleware.RateLimiter
	SecureCookies bool
}

// Only routing here; use cases are injected from outside.
func SetupRoutes(
	userUC UserUseCase,
	postUC PostUseCase,
	resolver session.Resolver,
	prober feed.ImageProber,
	opts Options,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.PrometheusMiddleware())
	r.SetHTMLTemplate(templates())

	guard := feed.NewGuard()
	uc := NewUserController(userUC, opts, logger)
	pc := NewPostController(postUC, guard, logger)
	fc := NewFeedController(postUC, guard, logger)
	vc := NewPreviewController(prober)

	limit := func(c *gin.Context) { c.Next() }
	if opts.RateLimiter != nil {
		limit = opts.RateLimiter.Middleware()
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	web := r.Group("/", middleware.SessionMiddleware(resolver, logger))
	web.GET("/", fc.Index)
	web.GET("/my-wall", fc.MyWall)
	web.GET("/admin", fc.Admin)
	web.GET("/auth", fc.Auth)
	web.POST("/posts", limit, pc.CreatePostForm)
	web.POST("/posts/:id/save", limit, pc.SavePostForm)
	web.POST("/posts/:id/delete", limit, pc.DeletePostForm)
	web.POST("/admin/posts", limit, pc.AdminCreatePostForm)
	web.POST("/auth/login", limit, uc.LoginForm)
	web.POST("/auth/signup", limit, uc.RegisterForm)
	web.POST("/auth/logout", uc.LogoutForm)

	api := r.Group("/api/v1", middleware.CORSMiddlewareWithOrigins(opts.CORSOrigins), middleware.SessionMiddleware(resolver, logger))
	api.GET("/posts", pc.ListPosts)
	api.GET("/wall", pc.ListWall)
	api.POST("/posts", limit, pc.CreatePost)
	api.POST("/posts/:id/save", limit, pc.SavePost)
	api.DELETE("/posts/:id", limit, pc.DeletePost)
	api.GET("/admin/posts", pc.ListAllPosts)
	api.GET("/admin/profiles", pc.ListProfiles)
	api.POST("/admin/posts", limit, pc.AdminCreatePost)
	api.POST("/auth/signup", limit, uc.RegisterUser)
	api.POST("/auth/login", limit, uc.LoginUser)
	api.POST("/auth/logout", uc.LogoutUser)
	api.GET("/auth/session", uc.CurrentSession)
	api.POST("/preview", limit, vc.Preview)

	return r
}
