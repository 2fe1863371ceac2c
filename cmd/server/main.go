// Package main runs the parks advertising and finance integration HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parquesmx/backend/config"
	"github.com/parquesmx/backend/internal/analytics"
	"github.com/parquesmx/backend/internal/auth"
	"github.com/parquesmx/backend/internal/campaigns"
	"github.com/parquesmx/backend/internal/concessions"
	"github.com/parquesmx/backend/internal/finance"
	"github.com/parquesmx/backend/internal/media"
	"github.com/parquesmx/backend/internal/middleware"
	"github.com/parquesmx/backend/internal/placements"
	"github.com/parquesmx/backend/internal/spaces"
	"github.com/parquesmx/backend/pkg/database"
	"github.com/parquesmx/backend/pkg/redis"
	"github.com/parquesmx/backend/pkg/response"
	"github.com/parquesmx/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		MediaBucket:          cfg.AWS.MediaBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := middleware.NewMetrics(registry)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Media (S3-backed ad creatives, content-hash dedup)
	mediaRepo := media.NewRepository(pool)
	mediaStore := media.NewStore(mediaRepo, s3Client, cfg.Media.MaxFileSizeBytes, logger)
	mediaHandler := media.NewHandler(mediaStore, mediaRepo, logger)

	// Campaigns and their advertisements
	campaignRepo := campaigns.NewRepository(pool)
	campaignHandler := campaigns.NewHandler(campaignRepo, logger)

	// Ad spaces
	spaceRepo := spaces.NewRepository(pool)
	spaceHandler := spaces.NewHandler(spaceRepo, logger)

	// Placements (tx-scoped capacity checks, Redis-cached page resolution)
	placementRepo := placements.NewRepository(pool)
	scheduler := placements.NewScheduler(placementRepo, logger)
	placementHandler := placements.NewHandler(scheduler, rdb, cfg.Cache.PageAdsTTLSeconds, logger)

	// Analytics (write-time gated daily counters)
	analyticsRepo := analytics.NewRepository(pool)
	recorder := analytics.NewRecorder(analyticsRepo, logger)
	analyticsHandler := analytics.NewHandler(recorder, analyticsRepo, logger)

	// Concession finance sync
	concessionRepo := concessions.NewRepository(pool)
	financeRepo := finance.NewRepository(pool)
	syncEngine := finance.NewEngine(concessionRepo, concessionRepo, financeRepo, logger)
	financeHandler := finance.NewHandler(syncEngine, financeRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(httpMetrics.Handler())

	// Health and metrics
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Public rendering and tracking
	router.GET("/pages/:pageType/ads", placementHandler.PageAds)
	router.POST("/placements/:id/impression", analyticsHandler.TrackImpression)
	router.POST("/placements/:id/click", analyticsHandler.TrackClick)
	router.POST("/placements/:id/conversion", analyticsHandler.TrackConversion)

	// Admin API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		admin := middleware.RequireRole("admin")

		// Media
		api.POST("/media/upload", admin, mediaHandler.Upload)
		api.GET("/media", mediaHandler.List)

		// Campaigns and advertisements
		api.POST("/campaigns", admin, campaignHandler.Create)
		api.GET("/campaigns", campaignHandler.List)
		api.GET("/campaigns/:id", campaignHandler.GetByID)
		api.PATCH("/campaigns/:id/status", admin, campaignHandler.UpdateStatus)
		api.POST("/campaigns/:id/ads", admin, campaignHandler.CreateAd)
		api.GET("/campaigns/:id/ads", campaignHandler.ListAds)
		api.PATCH("/ads/:id/toggle", admin, campaignHandler.ToggleAd)

		// Spaces
		api.POST("/spaces", admin, spaceHandler.Register)
		api.GET("/spaces", spaceHandler.List)

		// Placements
		api.POST("/placements", admin, placementHandler.Schedule)
		api.PATCH("/placements/:id/deactivate", admin, placementHandler.Deactivate)
		api.GET("/placements/:id/analytics", analyticsHandler.GetByPlacement)

		// Concession finance integration
		api.POST("/concessions-finance/sync", admin, financeHandler.SyncContracts)
		api.POST("/concessions-finance-integration/sync-all", admin, financeHandler.SyncPayments)
		api.GET("/concessions-finance-integration/dashboard", admin, financeHandler.Dashboard)
		api.GET("/concessions-finance-integration/payment/:id/status", admin, financeHandler.PaymentSyncStatus)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
