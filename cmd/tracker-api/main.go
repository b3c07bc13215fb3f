package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/task-tracker-api/api/swagger"
	"github.com/noah-isme/task-tracker-api/internal/repository"
	"github.com/noah-isme/task-tracker-api/internal/service"
	"github.com/noah-isme/task-tracker-api/pkg/cache"
	"github.com/noah-isme/task-tracker-api/pkg/config"
	"github.com/noah-isme/task-tracker-api/pkg/database"
	"github.com/noah-isme/task-tracker-api/pkg/logger"
)

// @title Task Tracker API
// @version 1.0.0
// @description Daily accountability tracker: submissions, reviews and cohort analytics
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	accountRepo := repository.NewAccountRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && cacheRepo.Enabled())

	var taskDays service.TaskDayProvider
	if cfg.Analytics.CalendarMode {
		taskDays = repository.NewTaskDayRepository(db)
	}

	services := serviceSet{
		auth: service.NewAuthService(accountRepo, validate, logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		accounts:    service.NewAccountService(accountRepo, cacheSvc, validate, logr),
		submissions: service.NewSubmissionService(submissionRepo, cacheSvc, metricsSvc, validate, logr),
		analytics: service.NewAnalyticsService(accountRepo, submissionRepo, taskDays, cacheSvc, metricsSvc, logr, service.AnalyticsOptions{
			CalendarMode:    cfg.Analytics.CalendarMode,
			LeaderboardSize: cfg.Analytics.LeaderboardSize,
		}),
		metrics: metricsSvc,
	}
	services.reports = service.NewReportService(services.analytics, logr)

	if _, err := services.accounts.EnsureAdmin(ctx, service.SeedAdmin{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Name:     cfg.Seed.AdminName,
	}); err != nil {
		logr.Fatal("failed to seed admin account", zap.Error(err))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, db, services)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
