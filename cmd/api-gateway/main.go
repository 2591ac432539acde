package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	_ "github.com/noah-isme/etrackfac-api/api/swagger"
	"github.com/noah-isme/etrackfac-api/internal/handler"
	"github.com/noah-isme/etrackfac-api/internal/repository"
	"github.com/noah-isme/etrackfac-api/internal/service"
	"github.com/noah-isme/etrackfac-api/pkg/cache"
	"github.com/noah-isme/etrackfac-api/pkg/config"
	"github.com/noah-isme/etrackfac-api/pkg/database"
	"github.com/noah-isme/etrackfac-api/pkg/jobs"
	"github.com/noah-isme/etrackfac-api/pkg/logger"
	"github.com/noah-isme/etrackfac-api/pkg/storage"
)

// @title eTrackFac API
// @version 1.0.0
// @description Faculty document submission tracking service
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		}
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()
	metricsService := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	requirementRepo := repository.NewRequirementRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Compliance.CacheTTL, logr, redisClient != nil)

	authService := service.NewAuthService(userRepo, departmentRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	departmentService := service.NewDepartmentService(departmentRepo, logr)
	semesterService := service.NewSemesterService(semesterRepo, userRepo, store, cacheService, validate, logr)
	requirementService := service.NewRequirementService(requirementRepo, semesterRepo, userRepo, store, cacheService, validate, logr)
	submissionService := service.NewSubmissionService(submissionRepo, requirementRepo, userRepo, store, signer, cacheService, logr, cfg.Uploads.MaxFileSizeBytes, cfg.Uploads.AllowedMIMEs)
	notificationService := service.NewNotificationService(notificationRepo, logr)

	notificationQueue := jobs.NewQueue("review-notifications", notificationService.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		Logger:     logr,
	})
	notificationQueue.Start(context.Background())
	defer notificationQueue.Stop()

	reviewService := service.NewReviewService(submissionRepo, userRepo, notificationQueue, cacheService, validate, logr)
	complianceService := service.NewComplianceService(userRepo, requirementRepo, submissionRepo, cacheService, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := buildRouter(cfg, logr, db, metricsService, authService, apiHandlers{
		auth:          handler.NewAuthHandler(authService),
		users:         handler.NewUserHandler(userService),
		departments:   handler.NewDepartmentHandler(departmentService),
		semesters:     handler.NewSemesterHandler(semesterService),
		requirements:  handler.NewRequirementHandler(requirementService),
		submissions:   handler.NewSubmissionHandler(submissionService, semesterService),
		reviews:       handler.NewReviewHandler(reviewService),
		reports:       handler.NewReportHandler(complianceService, semesterService),
		notifications: handler.NewNotificationHandler(notificationService),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
