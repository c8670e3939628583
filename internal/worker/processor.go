package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/internal/pkg/email"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
	"github.com/qs3c/ecomwords_server/internal/pkg/queue"
)

const (
	popTimeout = 5 * time.Second
	// 停机时写回队列的超时
	storeTimeout = 5 * time.Second
)

// Processor 通知发送处理器
type Processor struct {
	queue      *queue.Queue
	sender     email.Sender
	maxRetries int
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

// NewProcessor 创建通知处理器
func NewProcessor(q *queue.Queue, sender email.Sender, maxRetries int, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Processor{
		queue:      q,
		sender:     sender,
		maxRetries: maxRetries,
		logger:     logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 5 * time.Minute
			return b
		},
	}
}

// Process 渲染并发送一条通知，重试耗尽后放入死信队列，停机中断的发送放回队列
func (p *Processor) Process(ctx context.Context, msg *queue.NotificationMessage) error {
	mail, err := email.Render(msg.Kind, msg.To, msg.PlanName)
	if err != nil {
		return p.drop(ctx, msg, err)
	}

	send := func() error {
		msg.Attempts++
		return p.sender.Send(ctx, mail)
	}
	notify := func(err error, wait time.Duration) {
		p.logger.Warn("notification send failed, retrying",
			zap.String("id", msg.ID),
			zap.String("kind", msg.Kind),
			zap.Int("attempt", msg.Attempts),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	b := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), uint64(p.maxRetries)), ctx)
	if err := backoff.RetryNotify(send, b, notify); err != nil {
		if ctx.Err() != nil {
			return p.requeue(ctx, msg)
		}
		return p.drop(ctx, msg, err)
	}

	p.logger.Info("notification sent",
		zap.String("id", msg.ID),
		zap.String("kind", msg.Kind),
		zap.String("to", logger.MaskEmail(msg.To)),
		zap.String("payment_id", msg.PaymentID),
		zap.Int("attempts", msg.Attempts))
	return nil
}

func (p *Processor) drop(ctx context.Context, msg *queue.NotificationMessage, cause error) error {
	msg.LastError = cause.Error()
	p.logger.Error("notification dropped",
		zap.String("id", msg.ID),
		zap.String("kind", msg.Kind),
		zap.String("to", logger.MaskEmail(msg.To)),
		zap.Int("attempts", msg.Attempts),
		zap.Error(cause))

	storeCtx, cancel := detached(ctx)
	defer cancel()
	if err := p.queue.PushDead(storeCtx, msg); err != nil {
		p.logger.Error("failed to push dead letter", zap.String("id", msg.ID), zap.Error(err))
	}
	return fmt.Errorf("notification %s dropped: %w", msg.ID, cause)
}

// requeue 停机打断的消息放回队首，下次启动优先发送
func (p *Processor) requeue(ctx context.Context, msg *queue.NotificationMessage) error {
	storeCtx, cancel := detached(ctx)
	defer cancel()
	if err := p.queue.Requeue(storeCtx, msg); err != nil {
		p.logger.Error("failed to requeue notification", zap.String("id", msg.ID), zap.Error(err))
		return fmt.Errorf("requeue notification %s: %w", msg.ID, err)
	}

	p.logger.Info("notification requeued",
		zap.String("id", msg.ID),
		zap.String("kind", msg.Kind),
		zap.Int("attempts", msg.Attempts))
	return fmt.Errorf("notification %s interrupted: %w", msg.ID, ctx.Err())
}

// detached 不随调用方取消的上下文，保证消息能写回 Redis
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
}

// Run 启动 workers 个消费协程，ctx 取消后等待全部退出
func (p *Processor) Run(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (p *Processor) loop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("worker shutting down", zap.Int("worker", workerID))
			return
		default:
		}

		msg, err := p.queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("failed to pop notification", zap.Int("worker", workerID), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue // 超时，继续等待
		}

		_ = p.Process(ctx, msg)
	}
}
