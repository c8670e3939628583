package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/config"
	"github.com/qs3c/ecomwords_server/internal/database"
	"github.com/qs3c/ecomwords_server/internal/pkg/email"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
	"github.com/qs3c/ecomwords_server/internal/pkg/queue"
	"github.com/qs3c/ecomwords_server/internal/worker"
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

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zlog.Fatal("failed to connect redis", zap.Error(err))
	}
	zlog.Info("redis connected")

	notificationQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	sender := email.NewSender(&cfg.Email, time.Duration(cfg.Notification.DelayMS)*time.Millisecond, zlog)
	processor := worker.NewProcessor(notificationQueue, sender, cfg.Notification.MaxRetries, zlog)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		zlog.Info("received shutdown signal")
		cancel()
	}()

	zlog.Info("worker started",
		zap.String("queue", notificationQueue.Name()),
		zap.Int("max_workers", cfg.Queue.MaxWorkers))

	// 阻塞直到所有 worker 退出
	processor.Run(ctx, cfg.Queue.MaxWorkers)
	zlog.Info("worker shutdown complete")
}
