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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/staffkit/workforce-api/api/swagger"
	"github.com/staffkit/workforce-api/internal/handler"
	"github.com/staffkit/workforce-api/internal/middleware"
	"github.com/staffkit/workforce-api/internal/repository"
	"github.com/staffkit/workforce-api/internal/service"
	"github.com/staffkit/workforce-api/pkg/cache"
	"github.com/staffkit/workforce-api/pkg/config"
	"github.com/staffkit/workforce-api/pkg/database"
	"github.com/staffkit/workforce-api/pkg/export"
	"github.com/staffkit/workforce-api/pkg/jobs"
	"github.com/staffkit/workforce-api/pkg/logger"
	corsmiddleware "github.com/staffkit/workforce-api/pkg/middleware/cors"
	reqidmiddleware "github.com/staffkit/workforce-api/pkg/middleware/requestid"
	"github.com/staffkit/workforce-api/pkg/storage"
)

// @title Workforce API
// @version 0.1.0
// @description Employee attendance, leave and reporting service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	attendanceRepo := repository.NewAttendanceRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DefaultTTL, logr, cfg.Cache.Enabled)

	validate := validator.New()

	timeclockSvc := service.NewTimeclockService(attendanceRepo, employeeRepo, cacheSvc, cfg.Timeclock, validate, logr)
	reportSvc := service.NewReportService(attendanceRepo, leaveRepo, employeeRepo, cacheSvc, cfg.Cache.DefaultTTL, logr)
	leaveSvc := service.NewLeaveService(leaveRepo, employeeRepo, cacheSvc, validate, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, validate, logr)

	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(reportSvc, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	worker := service.NewExportWorker(exportJobRepo, exportSvc, metricsSvc, cfg.Reports.WorkerRetries, logr)
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		BufferSize: 64,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	exportJobSvc := service.NewExportJobService(exportJobRepo, queue, exportSvc, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
	})
	exportJobSvc.RecoverPendingJobs(ctx)
	exportJobSvc.StartCleanup(ctx)

	timeclockHandler := handler.NewTimeclockHandler(timeclockSvc, metricsSvc)
	reportHandler := handler.NewReportHandler(reportSvc, exportJobSvc)
	leaveHandler := handler.NewLeaveHandler(leaveSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		clock := api.Group("/timeclock")
		clock.POST("/clock-in", timeclockHandler.ClockIn)
		clock.POST("/clock-out", timeclockHandler.ClockOut)
		clock.POST("/breaks/start", timeclockHandler.StartBreak)
		clock.POST("/breaks/end", timeclockHandler.EndBreak)
		clock.GET("/day", timeclockHandler.Day)

		reports := api.Group("/reports")
		reports.GET("/monthly", reportHandler.Monthly)
		reports.POST("/exports", reportHandler.CreateExport)
		reports.GET("/exports/:id", reportHandler.ExportStatus)
		reports.GET("/exports/download/:token", reportHandler.Download)

		leaves := api.Group("/leaves")
		leaves.POST("", leaveHandler.Create)
		leaves.GET("", leaveHandler.List)
		leaves.GET("/:id", leaveHandler.Get)
		leaves.POST("/:id/approve", leaveHandler.Approve)
		leaves.POST("/:id/reject", leaveHandler.Reject)

		employees := api.Group("/employees")
		employees.POST("", employeeHandler.Create)
		employees.GET("", employeeHandler.List)
		employees.GET("/:id", employeeHandler.Get)
		employees.PATCH("/:id", employeeHandler.Update)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
