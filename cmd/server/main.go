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

	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/config"
	"github.com/qs3c/ecomwords_server/internal/api"
	"github.com/qs3c/ecomwords_server/internal/api/handler"
	"github.com/qs3c/ecomwords_server/internal/database"
	"github.com/qs3c/ecomwords_server/internal/generator"
	"github.com/qs3c/ecomwords_server/internal/pkg/cron"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
	"github.com/qs3c/ecomwords_server/internal/pkg/oauth"
	"github.com/qs3c/ecomwords_server/internal/pkg/oss"
	"github.com/qs3c/ecomwords_server/internal/pkg/pubsub"
	"github.com/qs3c/ecomwords_server/internal/pkg/queue"
	"github.com/qs3c/ecomwords_server/internal/pkg/ws"
	"github.com/qs3c/ecomwords_server/internal/repository"
	"github.com/qs3c/ecomwords_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.InitLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	zlog.Info("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zlog.Fatal("failed to connect redis", zap.Error(err))
	}
	zlog.Info("redis connected")

	// 初始化 OSS（可选）
	var storage service.FileStorage
	if oss.Enabled(&cfg.OSS) {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			zlog.Warn("failed to init OSS client, uploads disabled", zap.Error(err))
		} else {
			storage = ossClient
			zlog.Info("OSS client initialized")
		}
	}

	// 初始化 Queue、Pub/Sub 和 WebSocket Hub
	notificationQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	publisher := pubsub.NewPublisher(rdb)
	wsHub := ws.NewHub(zlog)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	usageRepo := repository.NewUsageRepository(rdb)

	// 初始化生成管线
	if cfg.Gemini.APIKey == "" {
		zlog.Warn("gemini api key is not set, generation requests will fail")
	}
	pipeline := generator.NewPipeline(generator.NewGeminiClient(cfg.Gemini.APIKey), generator.Config{
		TextModel:   cfg.Gemini.TextModel,
		VisionModel: cfg.Gemini.VisionModel,
		Temperature: cfg.Gemini.Temperature,
		Timeout:     time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
		MaxRetries:  cfg.Gemini.MaxRetries,
	}, zlog.Named("generator"))

	// 初始化 Service
	githubOAuth := oauth.NewGithubOAuth(cfg.OAuth.Github)
	authService := service.NewAuthService(userRepo, githubOAuth, oauth.NewStateStore(rdb), cfg, zlog)
	userService := service.NewUserService(userRepo, usageRepo, storage, zlog)
	creditService := service.NewCreditService(userRepo)
	usageService := service.NewUsageService(usageRepo, zlog)
	generationService := service.NewGenerationService(pipeline, creditService, usageService, zlog)
	listingService := service.NewListingService(listingRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo, zlog)
	notificationService := service.NewNotificationService(notificationQueue, zlog)
	paymentService := service.NewPaymentService(paymentRepo, userService, notificationService, publisher, storage, cfg, zlog)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, creditService, usageService)
	generationHandler := handler.NewGenerationHandler(generationService)
	listingHandler := handler.NewListingHandler(listingService)
	paymentHandler := handler.NewPaymentHandler(paymentService, cfg.Checkout.MaxScreenshotSize)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	catalogHandler := handler.NewCatalogHandler(cfg)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, zlog)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		generationHandler,
		listingHandler,
		paymentHandler,
		feedbackHandler,
		catalogHandler,
		websocketHandler,
		creditService,
		userService,
		cfg,
		zlog,
	)
	engine := router.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 订阅支付事件并推送给在线用户
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		if err := subscriber.Subscribe(ctx, wsHub.ForwardPaymentEvent); err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error("payment event subscription stopped", zap.Error(err))
		}
	}()

	// 定时补做未完成的审核后续步骤
	reconciler := cron.NewService(paymentService, time.Duration(cfg.Reconcile.IntervalMinutes)*time.Minute, zlog)
	reconciler.Start()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}
	go func() {
		zlog.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	zlog.Info("received shutdown signal")

	cancel()
	reconciler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
	zlog.Info("server shutdown complete")
}
