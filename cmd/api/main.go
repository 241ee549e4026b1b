package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/media-catalog-api/api/swagger"
	"github.com/noah-isme/media-catalog-api/internal/handler"
	"github.com/noah-isme/media-catalog-api/internal/repository"
	"github.com/noah-isme/media-catalog-api/internal/service"
	"github.com/noah-isme/media-catalog-api/pkg/cache"
	"github.com/noah-isme/media-catalog-api/pkg/config"
	"github.com/noah-isme/media-catalog-api/pkg/database"
	"github.com/noah-isme/media-catalog-api/pkg/export"
	"github.com/noah-isme/media-catalog-api/pkg/jobs"
	"github.com/noah-isme/media-catalog-api/pkg/logger"
	"github.com/noah-isme/media-catalog-api/pkg/posters"
	"github.com/noah-isme/media-catalog-api/pkg/ratelimit"
	"github.com/noah-isme/media-catalog-api/pkg/storage"
)

// @title Media Catalog API
// @version 1.0.0
// @description Back office for the streaming catalog: content, viewer requests, bug reports and viewership analytics.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const postersPublicPath = "/posters"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	applied, err := database.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		logr.Sugar().Infow("migrations applied", "versions", applied)
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	app, err := buildApp(cfg, db, redisClient, logr)
	if err != nil {
		return err
	}

	app.posterQueue.Start(ctx)
	defer app.posterQueue.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, app, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// app holds the wired handlers plus the collaborators the router needs.
type app struct {
	auth           *service.AuthService
	metrics        *service.MetricsService
	posterQueue    *jobs.Queue[service.PosterJob]
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	requestHandler *handler.ContentRequestHandler
	contentHandler *handler.ContentHandler
	bugHandler     *handler.BugHandler
	dashboard      *handler.DashboardHandler
	viewership     *handler.ViewershipHandler
	subscriptions  *handler.SubscriptionHandler
	exports        *handler.ExportHandler
	metricsHandler *handler.MetricsHandler
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) (*app, error) {
	validate := service.NewValidator()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	requestRepo := repository.NewContentRequestRepository(db)
	contentRepo := repository.NewContentRepository(db)
	bugRepo := repository.NewBugRepository(db)
	viewershipRepo := repository.NewViewershipRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	viewCache := service.NewCacheService(cacheRepo, metrics, cfg.ViewCache.TTL, logr, cfg.ViewCache.Enabled && redisClient != nil)

	store := limiterStore(cfg, redisClient, logr)
	newLimiter := func(prefix string, policy config.RatePolicy) *ratelimit.Limiter {
		return ratelimit.New(store, policy.MaxRequests, policy.Window, ratelimit.WithPrefix(prefix))
	}

	posterStore, err := storage.NewLocalStorage(cfg.Posters.Dir)
	if err != nil {
		return nil, err
	}
	fetcher := posters.NewFetcher(posterStore, posters.FetcherConfig{
		Timeout:     cfg.Posters.RequestTimeout,
		Concurrency: cfg.Posters.Concurrency,
		Logger:      logr,
	})
	posterSvc := service.NewPosterService(fetcher, contentRepo, metrics, postersPublicPath, logr)
	queue := jobs.NewQueue[service.PosterJob]("posters", posterSvc.Handle, jobs.QueueConfig{
		Workers:    cfg.Posters.Workers,
		MaxRetries: 2,
		Logger:     logr,
	})
	var scheduler *service.PosterService
	if cfg.Posters.FetchOnCreate {
		posterSvc.AttachQueue(queue)
		scheduler = posterSvc
	}

	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, auditRepo, viewCache, validate, logr)
	requestSvc := service.NewContentRequestService(service.ContentRequestServiceParams{
		Repo:      requestRepo,
		Limiter:   newLimiter("content_request", cfg.RateLimit.CreateContentRequest),
		Audit:     auditRepo,
		Cache:     viewCache,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
		Config:    service.ContentRequestServiceConfig{EnforceTransitions: cfg.Workflow.EnforceTransitions},
	})
	contentSvc := service.NewContentService(service.ContentServiceParams{
		Repo:      contentRepo,
		Limiter:   newLimiter("content", cfg.RateLimit.CreateContent),
		Audit:     auditRepo,
		Cache:     viewCache,
		Metrics:   metrics,
		Posters:   scheduler,
		Validator: validate,
		Logger:    logr,
	})
	bugSvc := service.NewBugService(service.BugServiceParams{
		Repo:      bugRepo,
		Limiter:   newLimiter("bug", cfg.RateLimit.CreateBug),
		Audit:     auditRepo,
		Cache:     viewCache,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
		Config:    service.BugServiceConfig{EnforceTransitions: cfg.Workflow.EnforceTransitions},
	})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Requests: requestSvc,
		Content:  contentSvc,
		Bugs:     bugSvc,
		Cache:    viewCache,
		Logger:   logr,
		Config:   service.DashboardServiceConfig{CacheTTL: cfg.ViewCache.TTL, TrendDays: cfg.Charts.TrendDays},
	})
	viewershipSvc := service.NewViewershipService(viewershipRepo, viewCache, logr, service.ViewershipServiceConfig{
		CacheTTL:  cfg.ViewCache.TTL,
		TopN:      cfg.Charts.TopContentMax,
		TrendDays: cfg.Charts.TrendDays,
	})
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, logr)
	exportSvc := service.NewExportService(service.ExportServiceParams{
		Requests:   requestSvc,
		Bugs:       bugSvc,
		Content:    contentSvc,
		Viewership: viewershipSvc,
		CSV:        export.NewCSVExporter(),
		PDF:        export.NewPDFExporter(),
		Logger:     logr,
	})

	checks := map[string]handler.Pinger{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	return &app{
		auth:           authSvc,
		metrics:        metrics,
		posterQueue:    queue,
		authHandler:    handler.NewAuthHandler(authSvc),
		userHandler:    handler.NewUserHandler(userSvc),
		requestHandler: handler.NewContentRequestHandler(requestSvc),
		contentHandler: handler.NewContentHandler(contentSvc),
		bugHandler:     handler.NewBugHandler(bugSvc),
		dashboard:      handler.NewDashboardHandler(dashboardSvc),
		viewership:     handler.NewViewershipHandler(viewershipSvc),
		subscriptions:  handler.NewSubscriptionHandler(subscriptionSvc),
		exports:        handler.NewExportHandler(exportSvc),
		metricsHandler: handler.NewMetricsHandler(metrics, checks),
	}, nil
}

// limiterStore picks the shared sliding-window store. The redis backend
// falls back to memory when redis is not configured.
func limiterStore(cfg *config.Config, redisClient *redis.Client, logr *zap.Logger) ratelimit.Store {
	if cfg.RateLimit.Backend == config.RateLimitBackendRedis {
		if redisClient != nil {
			return ratelimit.NewRedisStore(redisClient, "ratelimit")
		}
		logr.Warn("redis rate limit backend requested without redis, using memory store")
	}
	return ratelimit.NewMemoryStore()
}
