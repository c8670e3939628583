package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/config"
	"github.com/qs3c/ecomwords_server/internal/database"
	"github.com/qs3c/ecomwords_server/internal/pkg/cron"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
	"github.com/qs3c/ecomwords_server/internal/pkg/pubsub"
	"github.com/qs3c/ecomwords_server/internal/pkg/queue"
	"github.com/qs3c/ecomwords_server/internal/repository"
	"github.com/qs3c/ecomwords_server/internal/service"
)

var (
	batchSize = flag.Int("batch-size", 0, "Max payments to resume, 0 uses reconcile.batch_size")
	timeout   = flag.Duration("timeout", 2*time.Minute, "Give up after this long")
)

func main() {
	flag.Parse()

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *batchSize > 0 {
		cfg.Reconcile.BatchSize = *batchSize
	}

	zlog, err := logger.InitLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync()

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		zlog.Fatal("failed to connect redis", zap.Error(err))
	}

	userService := service.NewUserService(repository.NewUserRepository(db), repository.NewUsageRepository(rdb), nil, zlog)
	notificationService := service.NewNotificationService(queue.NewQueue(rdb, cfg.Queue.NotificationQueue), zlog)
	paymentService := service.NewPaymentService(
		repository.NewPaymentRepository(db),
		userService,
		notificationService,
		pubsub.NewPublisher(rdb),
		nil,
		cfg,
		zlog,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resumed, err := cron.NewService(paymentService, 0, zlog).RunNow(ctx)
	if err != nil {
		zlog.Fatal("reconcile failed", zap.Int("resumed", resumed), zap.Error(err))
	}
	zlog.Info("reconcile completed", zap.Int("resumed", resumed))
}
