// Package main runs the organization directory HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/orgcatalog/backend/config"
	"github.com/orgcatalog/backend/internal/activities"
	"github.com/orgcatalog/backend/internal/buildings"
	"github.com/orgcatalog/backend/internal/middleware"
	"github.com/orgcatalog/backend/internal/organizations"
	"github.com/orgcatalog/backend/pkg/database"
	"github.com/orgcatalog/backend/pkg/redis"
	"github.com/orgcatalog/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Activity hierarchy
	activityRepo := activities.NewRepository(pool)
	activitySvc := activities.NewService(activityRepo, cfg.Catalog.MaxActivityDepth, cfg.Catalog.UnknownParentPolicy, logger)
	activityHandler := activities.NewHandler(activitySvc)

	// Buildings and proximity search
	buildingRepo := buildings.NewRepository(pool)
	buildingSvc := buildings.NewService(buildingRepo, cfg.Search.MaxRadiusMeters, cfg.Search.NearbyLimit, logger)

	// Organization facade
	orgRepo := organizations.NewRepository(pool)
	orgSvc := organizations.NewService(orgRepo, activitySvc, buildingSvc, logger)
	orgHandler := organizations.NewHandler(orgSvc, activitySvc)
	buildingHandler := buildings.NewHandler(buildingSvc, orgSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	if cfg.API.RateLimitEnabled {
		rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		router.Use(middleware.RateLimit(rdb.Client, cfg.API.RateLimitPerMin, logger))
	}

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("/api/v1")
	api.Use(middleware.APIKey(cfg.API.Key, logger))
	{
		api.GET("/organizations/search/by-name", orgHandler.SearchByName)
		api.GET("/organizations/by-building/:buildingID", orgHandler.ByBuilding)
		api.GET("/organizations/by-activity", orgHandler.ByActivity)
		api.GET("/organizations/by-activity-tree", orgHandler.ByActivityTree)
		api.GET("/organizations/nearby/radius", orgHandler.NearbyRadius)
		api.GET("/organizations/:id", orgHandler.GetByID)
		api.POST("/organizations", orgHandler.Create)

		api.GET("/activities/tree", activityHandler.Tree)
		api.GET("/activities/by-level/:level", activityHandler.ByLevel)
		api.GET("/activities/:id/organizations/count", activityHandler.OrganizationCount)
		api.POST("/activities", activityHandler.Create)

		api.GET("/buildings/nearby", buildingHandler.Nearby)
		api.GET("/buildings/:id", buildingHandler.GetByID)
		api.POST("/buildings", buildingHandler.Create)
		api.DELETE("/buildings/:id", buildingHandler.Delete)
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
