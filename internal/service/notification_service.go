package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/internal/pkg/email"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
	"github.com/qs3c/ecomwords_server/internal/pkg/queue"
)

// Notifier 发送通知，只负责投递不等待结果
type Notifier interface {
	Dispatch(ctx context.Context, kind, to, planName, paymentID string) error
}

// NotificationService 将通知放入队列，由 worker 渲染并发送
type NotificationService struct {
	queue  *queue.Queue
	logger *zap.Logger
}

func NewNotificationService(q *queue.Queue, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{queue: q, logger: logger}
}

// Dispatch 入队前先渲染一次，未知类型直接返回错误
func (s *NotificationService) Dispatch(ctx context.Context, kind, to, planName, paymentID string) error {
	if _, err := email.Render(kind, to, planName); err != nil {
		return err
	}

	msg := &queue.NotificationMessage{
		ID:         uuid.NewString(),
		Kind:       kind,
		To:         to,
		PlanName:   planName,
		PaymentID:  paymentID,
		EnqueuedAt: time.Now(),
	}
	if err := s.queue.Push(ctx, msg); err != nil {
		return err
	}

	s.logger.Debug("notification queued",
		zap.String("kind", kind),
		zap.String("to", logger.MaskEmail(to)),
		zap.String("payment_id", paymentID))
	return nil
}
