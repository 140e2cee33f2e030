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

	"bringalong/internal/config"
	handlers "bringalong/internal/handlers/shared"
	"bringalong/internal/middleware"
	"bringalong/internal/repositories/mongodb"
	"bringalong/internal/services"
	"bringalong/pkg/cache"
	"bringalong/pkg/database"
	"bringalong/pkg/logger"
	"bringalong/pkg/storage"
	"bringalong/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.NewMigrator(db.Database, appLogger).Up(ctx)
		cancel()
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	store, closeCache, err := newCache(cfg)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialise cache")
	}
	defer closeCache()

	fileStorage, err := newStorage(context.Background(), cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialise file storage")
	}

	// Repositories
	userRepo := mongodb.NewUserRepository(db.Database)
	tripRepo := mongodb.NewTripRepository(db.Database)
	requestRepo := mongodb.NewTripRequestRepository(db.Database)

	// Services
	currencyService := services.NewCurrencyService(cfg.Currency, store, appLogger)
	geoService := services.NewGeoService(cfg.Geo, store, appLogger)
	authService := services.NewAuthService(userRepo, cfg.Security, appLogger)
	userService := services.NewUserService(userRepo, fileStorage, appLogger)
	tripService := services.NewTripService(tripRepo, requestRepo, userRepo, currencyService, cfg.App, cfg.Currency, appLogger)
	searchService := services.NewTripSearchService(tripRepo, userRepo, cfg.Search, appLogger)

	// Handlers
	tripHandler := handlers.NewTripHandler(tripService, searchService, userService, geoService, appLogger)
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	userHandler := handlers.NewUserHandler(userService, appLogger)
	currencyHandler := handlers.NewCurrencyHandler(currencyService, cfg.App.Currency, appLogger)
	locationHandler := handlers.NewLocationHandler(geoService, appLogger)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid trusted proxies")
	}

	// Global middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.PrometheusMiddleware())

	// API routes
	v1 := router.Group("/api/v1")
	{
		routes.SetupTripRoutes(v1, tripHandler, cfg.Security.JWTSecret)
		routes.SetupAuthRoutes(v1, authHandler)
		routes.SetupUserRoutes(v1, userHandler, cfg.Security.JWTSecret)
		routes.SetupCurrencyRoutes(v1, currencyHandler, locationHandler)
	}

	if cfg.Storage.Provider == "local" {
		router.Static("/uploads", cfg.Storage.Local.BasePath)
	}

	router.GET("/metrics", middleware.PrometheusHandler())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		})
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Infof("Starting server on port %d", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
}

func newCache(cfg *config.Config) (cache.Store, func(), error) {
	switch cfg.Cache.Provider {
	case "memory":
		return cache.NewMemoryCache(), func() {}, nil
	case "redis", "":
		rc, err := cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cfg.Cache.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return rc, func() { rc.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache provider %q", cfg.Cache.Provider)
	}
}

func newStorage(ctx context.Context, cfg *config.StorageConfig) (storage.StorageProvider, error) {
	switch cfg.Provider {
	case "local", "":
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	case "aws":
		return storage.NewAWSS3Storage(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	case "gcp":
		return storage.NewGCPStorage(ctx, cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
