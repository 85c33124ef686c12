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
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/maatram/scholarship-review-api/api/swagger"
	"github.com/maatram/scholarship-review-api/internal/ai"
	"github.com/maatram/scholarship-review-api/internal/handler"
	"github.com/maatram/scholarship-review-api/internal/middleware"
	"github.com/maatram/scholarship-review-api/internal/repository"
	"github.com/maatram/scholarship-review-api/internal/service"
	"github.com/maatram/scholarship-review-api/pkg/cache"
	"github.com/maatram/scholarship-review-api/pkg/config"
	"github.com/maatram/scholarship-review-api/pkg/database"
	"github.com/maatram/scholarship-review-api/pkg/export"
	"github.com/maatram/scholarship-review-api/pkg/jobs"
	"github.com/maatram/scholarship-review-api/pkg/logger"
	corsmiddleware "github.com/maatram/scholarship-review-api/pkg/middleware/cors"
	reqidmiddleware "github.com/maatram/scholarship-review-api/pkg/middleware/requestid"
	"github.com/maatram/scholarship-review-api/pkg/storage"
)

// @title Maatram Scholarship Review API
// @version 1.0.0
// @description Multi-stage scholarship application review workflow
// @BasePath /
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// the caches degrade to direct reads without redis
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	mediaStore, err := storage.NewMediaStore(cfg.Media.StorageDir, cfg.Media.TempDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare media storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Media.SignedURLSecret, cfg.Media.SignedURLTTL)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	aiClient := ai.NewClient(cfg.AI, logr)

	// repositories
	volunteerRepo := repository.NewVolunteerRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	tvRepo := repository.NewTeleVerificationRepository(db)
	pvRepo := repository.NewPhysicalVerificationRepository(db)
	viRepo := repository.NewVirtualInterviewRepository(db)
	riRepo := repository.NewRealInterviewRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	educationalRepo := repository.NewEducationalRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// services
	authSvc := service.NewAuthService(volunteerRepo, auditRepo, validate, logr, cfg.JWT)
	directorySvc := service.NewDirectoryService(volunteerRepo, studentRepo, logr)
	tvSvc := service.NewTeleVerificationService(tvRepo, snapshotRepo, volunteerRepo, studentRepo, auditRepo, cacheRepo, metricsSvc, validate, logr, cfg.Review.StatsCacheTTL)
	pvSvc := service.NewPhysicalVerificationService(pvRepo, mediaRepo, studentRepo, snapshotRepo, volunteerRepo, auditRepo, aiClient, nil, mediaStore, signer, metricsSvc, validate, logr, cfg.Review.MinImages)
	viSvc := service.NewVirtualInterviewService(viRepo, snapshotRepo, volunteerRepo, auditRepo, metricsSvc, validate, logr, cfg.Review.MinVIRemarksLen)
	riSvc := service.NewRealInterviewService(riRepo, snapshotRepo, volunteerRepo, auditRepo, cacheRepo, metricsSvc, validate, logr, cfg.Review.StatsCacheTTL)
	finalSvc := service.NewFinalDecisionService(studentRepo, riRepo, educationalRepo, snapshotRepo, auditRepo, cacheRepo, metricsSvc, validate, logr)
	educationalSvc := service.NewEducationalService(educationalRepo, snapshotRepo, auditRepo, metricsSvc, validate, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, auditRepo, cacheRepo, metricsSvc, logr, cfg.Analytics.CacheTTL, cfg.Analytics.Enabled)
	exportSvc := service.NewExportService(educationalRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	mediaSvc := service.NewMediaService(mediaStore, signer, logr)

	// the analysis pipeline consumes submitted PV reports in the background
	analysisQueue := jobs.NewQueue("pv-analysis", pvSvc.ProcessAnalysis, jobs.QueueConfig{
		Workers:    cfg.Pipeline.Workers,
		MaxRetries: cfg.Pipeline.MaxRetries,
		RetryDelay: cfg.Pipeline.RetryDelay,
		Logger:     logr,
	})
	pvSvc.SetQueue(analysisQueue)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	analysisQueue.Start(rootCtx)
	defer analysisQueue.Stop()

	scheduler := cron.New()
	if cfg.Media.CleanupSchedule != "" {
		if _, err := scheduler.AddFunc(cfg.Media.CleanupSchedule, func() {
			removed, err := mediaStore.CleanupTemp(cfg.Media.TempMaxAge)
			if err != nil {
				logr.Warn("temp media cleanup failed", zap.Error(err))
				return
			}
			if removed > 0 {
				logr.Info("temp media cleanup", zap.Int("removed", removed))
			}
		}); err != nil {
			logr.Warn("invalid media cleanup schedule", zap.Error(err))
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.MaxMultipartMemory = cfg.Media.MaxUploadBytes

	handler.Register(r, handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		TV:        handler.NewTeleVerificationHandler(tvSvc, directorySvc),
		PV:        handler.NewPhysicalVerificationHandler(pvSvc, directorySvc, cfg.Media.MaxUploadBytes),
		VI:        handler.NewVirtualInterviewHandler(viSvc, finalSvc, directorySvc),
		RI:        handler.NewRealInterviewHandler(riSvc, directorySvc),
		Final:     handler.NewFinalDecisionHandler(finalSvc),
		Education: handler.NewEducationalHandler(educationalSvc, finalSvc),
		Analytics: handler.NewAnalyticsHandler(analyticsSvc),
		Export:    handler.NewExportHandler(exportSvc),
		Media:     handler.NewMediaHandler(mediaSvc),
		Metrics:   handler.NewMetricsHandler(metricsSvc),
	}, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
