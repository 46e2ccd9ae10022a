package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mini-linkedin/internal/config"
	"mini-linkedin/internal/db"
	apihttp "mini-linkedin/internal/http"
	"mini-linkedin/internal/repository"
	"mini-linkedin/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	postRepo := repository.NewPgPostRepository(pool)

	cacheTTL := time.Duration(cfg.FeedCacheTTLSeconds) * time.Second
	feedCache := service.NewMemoryFeedCache(cacheTTL)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using memory feed cache", zap.Error(err))
		} else {
			feedCache = service.NewRedisFeedCache(redisClient, cacheTTL)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	userSvc := service.NewUserService(logger, userRepo)
	postSvc := service.NewPostService(logger, postRepo, userRepo, feedCache)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc)
	postHandler := apihttp.NewPostHandler(logger, postSvc)
	userHandler := apihttp.NewUserHandler(logger, userSvc, postSvc)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, postHandler, userHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
