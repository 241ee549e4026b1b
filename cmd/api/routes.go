package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/media-catalog-api/internal/middleware"
	"github.com/noah-isme/media-catalog-api/pkg/config"
	"github.com/noah-isme/media-catalog-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/media-catalog-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/media-catalog-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, a *app, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/health", a.metricsHandler.Health)
	r.GET("/ready", a.metricsHandler.Ready)
	r.GET("/metrics", a.metricsHandler.Prometheus)
	r.Static(postersPublicPath, cfg.Posters.Dir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.POST("/auth/login", a.authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(a.auth))
	secured.GET("/auth/me", a.authHandler.Me)

	requests := secured.Group("/content-requests")
	requests.GET("", a.requestHandler.List)
	requests.POST("", a.requestHandler.Create)
	requests.GET("/:id", a.requestHandler.Get)
	requests.PATCH("/:id/status", middleware.ManagerOnly(), a.requestHandler.UpdateStatus)
	requests.PATCH("/:id/assign", middleware.ManagerOnly(), a.requestHandler.Assign)

	content := secured.Group("/content")
	content.GET("", a.contentHandler.List)
	content.GET("/:id", a.contentHandler.Get)
	content.POST("", middleware.ManagerOnly(), a.contentHandler.Create)
	content.PATCH("/:id/status", middleware.ManagerOnly(), a.contentHandler.UpdateStatus)
	content.PATCH("/:id/assign", middleware.ManagerOnly(), a.contentHandler.Assign)

	bugs := secured.Group("/bugs")
	bugs.GET("", a.bugHandler.List)
	bugs.POST("", a.bugHandler.Create)
	bugs.GET("/:id", a.bugHandler.Get)
	bugs.PATCH("/:id/status", middleware.ManagerOnly(), a.bugHandler.UpdateStatus)
	bugs.PATCH("/:id/assign", middleware.ManagerOnly(), a.bugHandler.Assign)

	secured.GET("/dashboard", a.dashboard.Stats)
	secured.GET("/dashboard/charts", a.dashboard.Charts)

	exports := secured.Group("/export")
	exports.GET("/content-requests", a.exports.ContentRequests)
	exports.GET("/bugs", a.exports.Bugs)
	exports.GET("/content", a.exports.Content)
	exports.GET("/viewership", middleware.ManagerOnly(), a.exports.Viewership)

	managers := secured.Group("")
	managers.Use(middleware.ManagerOnly())
	managers.GET("/users", a.userHandler.List)
	managers.GET("/users/managers", a.userHandler.Managers)
	managers.GET("/users/:id", a.userHandler.Get)
	managers.POST("/users", a.userHandler.Create)
	managers.PATCH("/users/:id/role", a.userHandler.UpdateRole)
	managers.GET("/viewership", a.viewership.List)
	managers.GET("/viewership/stats", a.viewership.Stats)
	managers.GET("/viewership/trends", a.viewership.Trends)
	managers.GET("/subscriptions", a.subscriptions.List)
	managers.GET("/metrics/summary", a.metricsHandler.Snapshot)

	return r
}
