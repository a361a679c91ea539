package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"legal-aid/internal/config"
	"legal-aid/internal/db"
	apihttp "legal-aid/internal/http"
	"legal-aid/internal/realtime"
	"legal-aid/internal/repository"
	"legal-aid/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	if cfg.AutoMigrate {
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		logger.Info("schema applied")
	}

	userRepo := repository.NewPgUserRepository(pool)
	issueRepo := repository.NewPgIssueRepository(pool)
	conversationRepo := repository.NewPgConversationRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	notificationRepo := repository.NewPgNotificationRepository(pool)

	limiter := service.NewMemorySendRateLimiter(cfg.SendRateWindow, cfg.SendRateLimit)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory send limiter", zap.Error(err))
		} else {
			limiter = service.NewRedisSendRateLimiter(redisClient, cfg.SendRateWindow, cfg.SendRateLimit, logger)
		}
		cancel()
	}

	bus := realtime.NewBus()
	hub := realtime.NewHub(logger)
	hub.Attach(bus)

	jwtSvc := service.NewJWTService(cfg.JWTSecret, 0)
	resolver := service.NewParticipantResolver(issueRepo)
	messageSvc := service.NewMessageService(logger, resolver, conversationRepo, messageRepo, notificationRepo, bus)
	issueSvc := service.NewIssueService(logger, issueRepo, userRepo)
	notificationSvc := service.NewNotificationService(notificationRepo)
	roomAccess := service.NewRoomAccess(conversationRepo, resolver)

	router := apihttp.NewRouter(
		logger,
		jwtSvc,
		limiter,
		apihttp.NewIssueHandler(logger, issueSvc),
		apihttp.NewMessageHandler(logger, messageSvc),
		apihttp.NewNotificationHandler(logger, notificationSvc),
		apihttp.NewWSHandler(logger, hub, roomAccess, cfg.CORSOrigin, cfg.WSSendBuffer),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
