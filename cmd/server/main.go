package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/layover-backend-go/internal/api"
	"github.com/jengzang/layover-backend-go/internal/config"
	"github.com/jengzang/layover-backend-go/internal/database"
	"github.com/jengzang/layover-backend-go/internal/embedding"
	"github.com/jengzang/layover-backend-go/internal/logger"
	"github.com/jengzang/layover-backend-go/internal/middleware"
	"github.com/jengzang/layover-backend-go/internal/repository"
	"github.com/jengzang/layover-backend-go/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer appLog.Sync()

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		appLog.Fatal("Failed to load policy", "path", cfg.PolicyPath, "error", err)
	}

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}, appLog); err != nil {
		appLog.Fatal("Failed to initialize database", "error", err)
	}
	defer database.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		appLog.Fatal("Failed to initialize embedder", "provider", cfg.EmbeddingProvider, "error", err)
	}

	var cache *embedding.Cache
	if cfg.RedisAddr != "" {
		rdb, err := embedding.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			appLog.Warn("Redis unavailable, embedding cache stays in memory", "addr", cfg.RedisAddr, "error", err)
			cache = embedding.NewCache(embedder, nil, cfg.EmbedCacheTTL, appLog)
		} else {
			defer rdb.Close()
			cache = embedding.NewCache(embedder, rdb, cfg.EmbedCacheTTL, appLog)
		}
	} else {
		cache = embedding.NewCache(embedder, nil, cfg.EmbedCacheTTL, appLog)
	}

	svc, err := service.NewLayoverService(repository.NewHubRepository(database.GetDB()), cache, policy, appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize service", "error", err)
	}

	stop := make(chan struct{})
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	go limiter.Run(stop)

	// 初始化路由
	router := api.SetupRouter(cfg, svc, limiter, appLog)
	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		appLog.Info("Server starting", "addr", cfg.Port, "embedder", cfg.EmbeddingProvider, "scorer", svc.ScorerName())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)

	appLog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("Server shutdown failed", "error", err)
	}
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		e, err := embedding.NewOpenAI(embedding.OpenAIConfig{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIEmbedModel,
			Timeout: cfg.EmbedTimeout,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	case "local", "":
		return embedding.NewLocal(), nil
	default:
		return nil, errors.New("unknown embedding provider: " + cfg.EmbeddingProvider)
	}
}
