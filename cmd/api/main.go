package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"studygen/internal/adapter"
	"studygen/internal/cache"
	"studygen/internal/config"
	"studygen/internal/domain"
	"studygen/internal/generator"
	"studygen/internal/handler"
	"studygen/internal/logger"
	"studygen/internal/observability"
	"studygen/internal/service"
)

func main() {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, "studygen-api", os.Stderr)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	// The completion cache only matters for the model-backed generator.
	var completionCache domain.Cache
	if cfg.Redis.Address != "" && generator.KindFor(cfg.LLM.Provider) == generator.KindModel {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, completion cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			completionCache = adapter.NewRedisCacheAdapter(redisClient)
			appLogger.Info("Completion cache enabled", zap.String("address", cfg.Redis.Address))
		}
	}

	gen, err := generator.NewFromConfig(ctx, cfg.LLM, completionCache, cfg.Cache.CompletionTTL, appLogger.Named("generator"))
	if err != nil {
		appLogger.Fatal("Failed to create generator", zap.Error(err))
	}
	appLogger.Info("Generator initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model),
	)

	summarizerService := service.NewSummarizerService(gen, cfg.LLM.Temperature, appLogger.Named("summarizer"))
	quizService := service.NewQuizGeneratorService(gen, appLogger.Named("quiz"))

	app := handler.NewApp(
		cfg.Server,
		appLogger,
		handler.NewSummarizeHandler(summarizerService, handler.WithCacheHealth(completionCache)),
		handler.NewQuizHandler(quizService, handler.WithCacheHealth(completionCache)),
	)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Error("Failed to flush traces", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
