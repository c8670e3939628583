package cron

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EffectsResumer 补做已审核付款的后续步骤
type EffectsResumer interface {
	ResumeIncompleteEffects(ctx context.Context) (int, error)
}

type Service struct {
	resumer  EffectsResumer
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewService(resumer EffectsResumer, interval time.Duration, logger *zap.Logger) *Service {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		resumer:  resumer,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	s.wg.Add(1)
	go s.runReconcile()
	s.logger.Info("cron service started", zap.Duration("reconcile_interval", s.interval))
}

// Stop 停止定时任务并等待当前任务结束
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.logger.Info("cron service stopped")
}

// runReconcile 按间隔补做付款审核的后续步骤
func (s *Service) runReconcile() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.reconcile()
		}
	}
}

func (s *Service) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	resumed, err := s.resumer.ResumeIncompleteEffects(ctx)
	if err != nil {
		s.logger.Error("payment effects reconcile failed", zap.Error(err))
		return
	}
	if resumed > 0 {
		s.logger.Info("payment effects reconciled", zap.Int("resumed", resumed))
	}
}

// RunNow 立即执行一次（用于测试或手动触发）
func (s *Service) RunNow(ctx context.Context) (int, error) {
	s.logger.Info("manual reconcile triggered")
	return s.resumer.ResumeIncompleteEffects(ctx)
}
