package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/task-tracker-api/internal/handler"
	"github.com/noah-isme/task-tracker-api/internal/middleware"
	"github.com/noah-isme/task-tracker-api/internal/models"
	"github.com/noah-isme/task-tracker-api/internal/service"
	"github.com/noah-isme/task-tracker-api/pkg/config"
	"github.com/noah-isme/task-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/task-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/task-tracker-api/pkg/middleware/requestid"
)

type serviceSet struct {
	auth        *service.AuthService
	accounts    *service.AccountService
	submissions *service.SubmissionService
	analytics   *service.AnalyticsService
	reports     *service.ReportService
	metrics     *service.MetricsService
}

func newRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, svc serviceSet) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svc.metrics, "/metrics"))

	metricsHandler := handler.NewMetricsHandler(svc.metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(svc.auth)
	accountHandler := handler.NewAccountHandler(svc.accounts)
	submissionHandler := handler.NewSubmissionHandler(svc.submissions, svc.analytics)
	analyticsHandler := handler.NewAnalyticsHandler(svc.analytics)
	reportHandler := handler.NewReportHandler(svc.reports)

	requireAuth := middleware.JWT(svc.auth)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	studentOnly := middleware.RequireRoles(models.RoleStudent)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", requireAuth, accountHandler.Profile)
	auth.PUT("/profile", requireAuth, middleware.Audit(logr, "update", "profile"), accountHandler.UpdateProfile)
	auth.POST("/students", requireAuth, adminOnly, middleware.Audit(logr, "create", "student"), accountHandler.RegisterStudent)
	auth.GET("/students", requireAuth, adminOnly, accountHandler.ListStudents)

	submissions := api.Group("/submissions", requireAuth)
	submissions.POST("", studentOnly, middleware.Audit(logr, "create", "submission"), submissionHandler.Submit)
	submissions.GET("/today", studentOnly, submissionHandler.Today)
	submissions.GET("/history", studentOnly, submissionHandler.History)
	submissions.GET("/my-performance", studentOnly, middleware.WithResponseMeta(), submissionHandler.MyPerformance)
	submissions.GET("/pending", adminOnly, submissionHandler.Pending)
	submissions.PATCH("/:id/review", adminOnly, middleware.Audit(logr, "review", "submission"), submissionHandler.Review)

	analytics := api.Group("/analytics", requireAuth, adminOnly, middleware.WithResponseMeta())
	analytics.GET("/summary", analyticsHandler.Summary)
	analytics.GET("/missed", analyticsHandler.Missed)
	analytics.GET("/branches", analyticsHandler.Branches)
	analytics.GET("/filter", analyticsHandler.Filter)
	analytics.GET("/leaderboard", analyticsHandler.Leaderboard)
	analytics.GET("/search", analyticsHandler.Search)
	analytics.GET("/performance/:id", analyticsHandler.Performance)
	analytics.GET("/system", analyticsHandler.System)

	reports := api.Group("/reports", requireAuth, adminOnly)
	reports.GET("/branch", reportHandler.Branch)

	return r
}
