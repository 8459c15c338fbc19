package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"veloraMarket/app/echo-server/router"
	"veloraMarket/business/interaction"
	"veloraMarket/business/recommendation"
	"veloraMarket/internal/middleware"
	psqlRepo "veloraMarket/internal/repository/postgres"
	redisRepo "veloraMarket/internal/repository/redis"
	"veloraMarket/internal/rest"
	"veloraMarket/internal/worker"
	"veloraMarket/pkg/config"
	"veloraMarket/pkg/database"
	redisdb "veloraMarket/pkg/database/redis"
	"veloraMarket/pkg/logger"
	"veloraMarket/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Velora API", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}

	// Init repo
	recoRepo := psqlRepo.NewRecommendationRepository(db, psqlRepo.RecommendationRepositoryOptions{
		LookbackHours:   cfg.Recommendation.LookbackHours,
		MaxSeedProducts: cfg.Recommendation.MaxSeedProducts,
	})
	interactionRepo := psqlRepo.NewInteractionRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	trendingCache := redisRepo.NewTrendingCache(
		redisClient,
		time.Duration(cfg.Recommendation.TrendingCacheTTLSecs)*time.Second,
	)

	// Background score worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	scoreWorker := worker.NewScoreWorker(trendingCache, cfg.Recommendation.ScoreWorkerQueueSize)
	go scoreWorker.Run(workerCtx)

	// Init service
	engine := recommendation.NewEngine(recommendation.EngineConfig{
		DecayHalfLifeHours: cfg.Recommendation.DecayHalfLifeHours,
	})
	recoService := recommendation.NewService(recoRepo, engine)
	interactionService := interaction.NewService(interactionRepo, scoreWorker)

	// Init handler
	recoHandler := rest.NewRecommendationHandler(recoService, productRepo, trendingCache)
	interactionHandler := rest.NewInteractionHandler(interactionService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	optionalAuth := middleware.OptionalAuth(cfg.JWT.SecretKey)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetRecommendationRoutes(api, recoHandler, optionalAuth)
	router.SetInteractionRoutes(api, interactionHandler, optionalAuth)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	stopWorker()

	logger.Info("Server stopped")
}
