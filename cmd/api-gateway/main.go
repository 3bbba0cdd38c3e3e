package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/abs-dashboard-api/api/swagger"
	"github.com/noah-isme/abs-dashboard-api/internal/bootstrap"
	"github.com/noah-isme/abs-dashboard-api/internal/handler"
	"github.com/noah-isme/abs-dashboard-api/internal/listing"
	"github.com/noah-isme/abs-dashboard-api/internal/middleware"
	"github.com/noah-isme/abs-dashboard-api/internal/models"
	"github.com/noah-isme/abs-dashboard-api/internal/repository"
	"github.com/noah-isme/abs-dashboard-api/internal/service"
	"github.com/noah-isme/abs-dashboard-api/pkg/cache"
	"github.com/noah-isme/abs-dashboard-api/pkg/config"
	"github.com/noah-isme/abs-dashboard-api/pkg/export"
	"github.com/noah-isme/abs-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/abs-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/abs-dashboard-api/pkg/middleware/requestid"
)

// @title ABS Dashboard API
// @version 1.0.0
// @description Admin dashboard backend: lecture schedule, students, results, announcements and banners.
// @BasePath /api
// @schemes http https
// @securityDefinitions.basic BasicAuth

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

	store, err := bootstrap.OpenStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open document store", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	documents := service.NewInstrumentedStore(store.Documents, metricsSvc)
	checks := map[string]handler.ReadinessCheck{"store": store.Ping}

	var cacheBackend service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			// the cached lists fall back to the store
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(client, "abs-dashboard", logr)
			checks["cache"] = cacheRepo.Ping
			cacheBackend = cacheRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheBackend, metricsSvc, cfg.Cache.TTL, logr, cacheBackend != nil)

	engine := listing.NewEngine(documents, listing.NewClock(cfg.Listing.UTCOffset, nil), listing.Config{
		Collection:      models.CollectionLectures,
		DefaultPageSize: cfg.Listing.DefaultPageSize,
		MaxPageSize:     cfg.Listing.MaxPageSize,
		MaxCandidates:   cfg.Listing.MaxCandidates,
	}, metricsSvc, logr)

	documentSvc := service.NewDocumentService(documents, cacheSvc, validator.New(), logr, service.DocumentServiceConfig{
		DefaultPageSize: cfg.Listing.DefaultPageSize,
		MaxPageSize:     cfg.Listing.MaxPageSize,
	})
	lectureSvc := service.NewLectureService(engine, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	resultSvc := service.NewResultService(documents, logr, cfg.Listing.DefaultPageSize, cfg.Listing.MaxPageSize)

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks, logr)
	handlers := handler.Handlers{
		Lectures:  handler.NewLectureHandler(lectureSvc),
		Students:  handler.NewStudentHandler(documentSvc),
		Results:   handler.NewResultHandler(resultSvc),
		Content:   handler.NewContentHandler(documentSvc),
		Metrics:   metricsHandler,
		Documents: handler.NewDocumentHandlers(documentSvc),
	}

	auth, err := middleware.NewSiteAuth(cfg.Auth, logr, "/health", "/ready", "/metrics", "/ping", cfg.APIPrefix+"/ping")
	if err != nil {
		logr.Fatal("failed to configure dashboard credential", zap.Error(err))
	}
	if !auth.Enabled() {
		logr.Warn("no dashboard credential configured, API is open")
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimit, metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(auth.Middleware())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	handler.Register(r.Group(prefix, limiter.Middleware()), handlers)
	if cfg.MountRoot && prefix != "/" {
		handler.Register(r.Group("/", limiter.Middleware()), handlers)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env, "prefix", prefix)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("http server shutdown error", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		logr.Error("document store close error", zap.Error(err))
	}
}
