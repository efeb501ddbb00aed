package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ajwhitfield/fpl-optimizer/internal/api"
	"github.com/ajwhitfield/fpl-optimizer/internal/api/handlers"
	"github.com/ajwhitfield/fpl-optimizer/internal/api/middleware"
	"github.com/ajwhitfield/fpl-optimizer/internal/services"
	"github.com/ajwhitfield/fpl-optimizer/internal/solver"
	"github.com/ajwhitfield/fpl-optimizer/pkg/config"
	"github.com/ajwhitfield/fpl-optimizer/pkg/database"
	"github.com/ajwhitfield/fpl-optimizer/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	logger.InitLogger("", cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis when a cache is configured
	var cache *services.RosterCache
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logrus.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		cache = services.NewRosterCache(redisClient)
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	v1 := router.Group("/api/v1")
	if err := api.SetupRoutes(v1, db, cache, solver.NewBranchAndBound(), cfg); err != nil {
		logrus.Fatalf("Failed to set up routes: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Forced shutdown: %v", err)
	}
	logrus.Info("Server stopped")
}
