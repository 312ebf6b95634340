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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/faculty-leave-api/api/swagger"
	"github.com/noah-isme/faculty-leave-api/internal/handler"
	"github.com/noah-isme/faculty-leave-api/internal/middleware"
	"github.com/noah-isme/faculty-leave-api/internal/repository"
	"github.com/noah-isme/faculty-leave-api/internal/service"
	"github.com/noah-isme/faculty-leave-api/pkg/cache"
	"github.com/noah-isme/faculty-leave-api/pkg/config"
	"github.com/noah-isme/faculty-leave-api/pkg/database"
	"github.com/noah-isme/faculty-leave-api/pkg/jobs"
	"github.com/noah-isme/faculty-leave-api/pkg/logger"
	"github.com/noah-isme/faculty-leave-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/faculty-leave-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/faculty-leave-api/pkg/middleware/requestid"
	"github.com/noah-isme/faculty-leave-api/pkg/storage"
)

// @title Faculty Leave API
// @version 1.0.0
// @description Leave applications, approvals, balances and notifications for faculty members
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, balance cache disabled", zap.Error(err))
	}
	var cacheClient redis.UniversalClient
	if redisClient != nil {
		cacheClient = redisClient
		defer redisClient.Close()
	}
	cacheRepo := repository.NewCacheRepository(cacheClient, logr)

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.BalanceTTL, logr, cacheRepo.Enabled())
	tokens := service.NewTokenService(cfg.JWT)
	validate := validator.New()

	stores := service.NewSQLStores(db)
	txRunner := service.NewSQLTxRunner(repository.NewTxManager(db))

	templates, err := mailer.NewTemplates(cfg.Mail.BaseURL)
	if err != nil {
		logr.Fatal("failed to parse mail templates", zap.Error(err))
	}
	mailWorker := service.NewMailWorker(stores.Users, templates, mailer.New(cfg.Mail, logr), metrics, logr)
	mailQueue := jobs.NewQueue(service.MailJobType, mailWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Mail.Workers,
		BufferSize: cfg.Mail.BufferSize,
		MaxRetries: cfg.Mail.MaxRetries,
		RetryDelay: cfg.Mail.RetryDelay,
		Logger:     logr,
		OnResult:   mailWorker.OnResult,
	})
	mailQueue.Start(ctx)
	defer mailQueue.Stop()
	metrics.ObserveQueue(service.MailJobType, mailQueue.Stats)

	documentStore, err := storage.NewDocumentStore(cfg.Documents.BaseDir)
	if err != nil {
		logr.Fatal("failed to prepare documents directory", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SigningSecret, cfg.Documents.LinkTTL)
	documents := service.NewDocumentService(stores.Applications, documentStore, signer, cfg.APIPrefix+"/documents")

	notifier := service.NewNotificationService(stores.Notifications, mailQueue, logr)
	balances := service.NewBalanceService(stores.Balances, stores.Users, cacheSvc, cfg.Cache.BalanceTTL, logr)
	policy := service.NewApprovalPolicy(cfg.Leave)

	var leaves *service.LeaveService
	if cfg.Documents.Required {
		leaves = service.NewLeaveService(stores, txRunner, policy, balances, notifier, metrics, documents, validate, logr)
	} else {
		leaves = service.NewLeaveService(stores, txRunner, policy, balances, notifier, metrics, nil, validate, logr)
	}
	adjustments := service.NewClassAdjustmentService(stores, txRunner, notifier, validate, logr)
	directory := service.NewDirectoryService(stores.Users, stores.LeaveTypes)
	reports := service.NewReportService(repository.NewReportRepository(db), cfg.Reports.MaxRows, logr)

	if cfg.Notifications.CleanupEnabled {
		go notifier.RunCleanup(ctx, cfg.Notifications.CleanupInterval, cfg.Notifications.RetentionDays)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if cacheRepo.Enabled() {
		checks["redis"] = cacheRepo.Ping
	}
	ops := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Leaves:           handler.NewLeaveHandler(leaves, adjustments, documents),
		Balances:         handler.NewBalanceHandler(balances),
		ClassAdjustments: handler.NewClassAdjustmentHandler(adjustments),
		Notifications:    handler.NewNotificationHandler(notifier),
		Directory:        handler.NewDirectoryHandler(directory),
		Reports:          handler.NewReportHandler(reports),
		Documents:        handler.NewDocumentHandler(documents),
	}, tokens)

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
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
