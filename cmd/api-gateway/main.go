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

	_ "github.com/adm-pessoal/escalas-api/api/swagger"
	"github.com/adm-pessoal/escalas-api/internal/handler"
	"github.com/adm-pessoal/escalas-api/internal/middleware"
	"github.com/adm-pessoal/escalas-api/internal/models"
	"github.com/adm-pessoal/escalas-api/internal/repository"
	"github.com/adm-pessoal/escalas-api/internal/service"
	"github.com/adm-pessoal/escalas-api/pkg/cache"
	"github.com/adm-pessoal/escalas-api/pkg/config"
	"github.com/adm-pessoal/escalas-api/pkg/database"
	"github.com/adm-pessoal/escalas-api/pkg/export"
	"github.com/adm-pessoal/escalas-api/pkg/jobs"
	"github.com/adm-pessoal/escalas-api/pkg/logger"
	corsmiddleware "github.com/adm-pessoal/escalas-api/pkg/middleware/cors"
	reqidmiddleware "github.com/adm-pessoal/escalas-api/pkg/middleware/requestid"
	"github.com/adm-pessoal/escalas-api/pkg/storage"
)

// @title Escalas API
// @version 1.0.0
// @description Processamento e gestão de escalas de trabalho
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
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.Enabled)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "escalas-api",
	})

	processorSvc := service.NewProcessorService(documentRepo, ruleRepo, cacheSvc, logr, service.ProcessorServiceConfig{
		MaxRows: cfg.Importer.MaxRows,
	})

	csvExporter := export.NewCSVExporter()
	pdfExporter := export.NewPDFExporter()

	documentSvc := service.NewDocumentService(documentRepo, cacheSvc, csvExporter, logr)
	ruleSvc := service.NewRuleService(ruleRepo, logr)

	dashboardSvc := service.NewDashboardService(documentRepo, ruleRepo, cacheSvc, logr, service.DashboardServiceConfig{
		CacheTTL:    cfg.Dashboard.CacheTTL,
		RecentLimit: 5,
	})

	fileStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	exportSvc := service.NewExportService(documentRepo, fileStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, csvExporter, pdfExporter)

	reportWorker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
	reportQueue := jobs.NewQueue("reports", reportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		BufferSize: 64,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})

	reportSvc := service.NewReportService(reportRepo, reportQueue, exportSvc, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reports.Enabled {
		reportQueue.Start(ctx)
		defer reportQueue.Stop()
		reportSvc.RecoverPendingJobs(ctx)
		reportSvc.StartCleanup(ctx)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	processorHandler := handler.NewProcessorHandler(processorSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	ruleHandler := handler.NewRuleHandler(ruleSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	// Signed download links carry their own authorization.
	api.GET("/export/:token", reportHandler.DownloadReport)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		processor := protected.Group("/processor")
		{
			processor.POST("/schedules", processorHandler.ProcessSchedules)
			processor.POST("/translate", processorHandler.Translate)
			processor.POST("/preview", processorHandler.Preview)
		}

		documents := protected.Group("/documents")
		{
			documents.GET("", documentHandler.List)
			documents.POST("", documentHandler.Create)
			documents.GET("/listing.csv", documentHandler.ExportListing)
			documents.GET("/:id", documentHandler.Get)
			documents.PUT("/:id", documentHandler.Update)
			documents.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), documentHandler.Delete)
			documents.POST("/:id/duplicate", documentHandler.Duplicate)
			documents.POST("/:id/export", documentHandler.Export)
		}

		rules := protected.Group("/rules")
		{
			rules.GET("", ruleHandler.List)
			rules.GET("/:id", ruleHandler.Get)
			rules.POST("", middleware.RequireRoles(models.RoleAdmin), ruleHandler.Create)
			rules.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), ruleHandler.Update)
			rules.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), ruleHandler.Delete)
		}

		if cfg.Dashboard.Enabled {
			protected.GET("/dashboard", dashboardHandler.Summary)
			protected.GET("/dashboard/metrics", metricsHandler.SystemMetrics)
		}

		if cfg.Reports.Enabled {
			reports := protected.Group("/reports")
			{
				reports.POST("/generate", reportHandler.GenerateReport)
				reports.GET("/status/:id", reportHandler.ReportStatus)
			}
		}
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

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
