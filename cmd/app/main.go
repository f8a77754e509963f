package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dbadapter "snippets/internal/adapters/database"
	"snippets/internal/adapters/httpapi"
	"snippets/internal/adapters/httpapi/middleware"
	"snippets/internal/adapters/imageprobe"
	"snippets/internal/adapters/memory"
	"snippets/internal/adapters/postgrest"
	redisadapter "snippets/internal/adapters/redis"
	"snippets/internal/config"
	postapp "snippets/internal/core/post/service"
	userapp "snippets/internal/core/user/service"
	postPort "snippets/internal/ports/post"
	userPort "snippets/internal/ports/user"
	"snippets/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, fromFile, err := config.Load()
	if err != nil {
		// The logger depends on APP_ENV, so config errors go to a bootstrap logger.
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger, err := config.InitLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	if !fromFile {
		logger.Info("no .env file, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Users always live in the local database; posts and profiles follow BACKEND.
	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := dbadapter.Migrate(db); err != nil {
		logger.Fatal("error during migrations", zap.Error(err))
	}
	logger.Info("database migrations completed")

	rdb, err := config.InitRedis(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}

	res := &resources{db: db, redis: rdb}
	defer res.close(logger)

	var (
		postRepo    postPort.PostRepository
		profileRepo postPort.ProfileRepository
	)
	switch cfg.Backend {
	case config.BackendPostgREST:
		remote := postgrest.New(cfg.PostgRESTURL, cfg.PostgRESTKey, logger)
		res.closers = append(res.closers, remote.Close)
		postRepo, profileRepo = remote, remote
		logger.Info("using postgrest backend", zap.String("url", cfg.PostgRESTURL))
	default:
		postRepo = dbadapter.NewPostRepositoryDatabase(db)
		profileRepo = dbadapter.NewProfileRepositoryDatabase(db)
	}

	var (
		sessions userPort.SessionStore
		sweepers []workers.Sweeper
	)
	if rdb != nil {
		sessions = redisadapter.NewSessionStoreRedis(rdb, logger)
	} else {
		store := memory.NewSessionStore()
		sessions = store
		sweepers = append(sweepers, store)
		logger.Warn("REDIS_ADDR not set, sign-outs are kept in memory")
	}

	userSvc := userapp.NewUserService(
		dbadapter.NewUserRepositoryDatabase(db),
		profileRepo,
		sessions,
		[]byte(cfg.JWTSecret),
		cfg.JWTTTL,
		cfg.AdminEmails,
		logger,
	)
	if err := userSvc.EnsureAdmins(ctx); err != nil {
		logger.Error("could not grant admin roles", zap.Error(err))
	}
	postSvc := postapp.NewPostService(postRepo, profileRepo, cfg.BackendTimeout, logger)

	prober := imageprobe.New(cfg.ProbeTimeout)
	res.closers = append(res.closers, prober.Close)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	sweepers = append(sweepers, limiter)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := httpapi.SetupRoutes(userSvc, postSvc, userSvc, prober, httpapi.Options{
		CORSOrigins:   cfg.CORSOrigins,
		RateLimiter:   limiter,
		SecureCookies: cfg.Env == config.EnvProduction,
	}, logger)

	statsWorker := workers.NewStatsWorker(postSvc, cfg.StatsInterval, logger, sweepers...)
	go statsWorker.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("App is running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

type resources struct {
	db      *gorm.DB
	redis   *redis.Client
	closers []func() error
}

// close releases Redis, the database and any HTTP clients.
func (r *resources) close(logger *zap.Logger) {
	for _, c := range r.closers {
		if err := c(); err != nil {
			logger.Error("error closing client", zap.Error(err))
		}
	}
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			logger.Error("error closing redis connection", zap.Error(err))
		}
	}

	sqlDB, err := r.db.DB()
	if err != nil {
		logger.Error("error getting raw DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("error closing database connection", zap.Error(err))
	}
}
