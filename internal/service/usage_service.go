package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
	"github.com/qs3c/ecomwords_server/internal/repository"
)

// UsageWindowDays 用量统计窗口
const UsageWindowDays = 7

type UsageService struct {
	usageRepo *repository.UsageRepository
	logger    *zap.Logger
	now       func() time.Time
}

func NewUsageService(usageRepo *repository.UsageRepository, logger *zap.Logger) *UsageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsageService{
		usageRepo: usageRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordGeneration 记录一次成功生成，失败只记日志
func (s *UsageService) RecordGeneration(ctx context.Context, email string) {
	if err := s.usageRepo.Append(ctx, email, s.now()); err != nil {
		s.logger.Warn("failed to record usage",
			zap.String("email", logger.MaskEmail(email)), zap.Error(err))
	}
}

// GetWeeklyUsage 最近 7 天每天的生成次数，从旧到新，最后一项为今天
func (s *UsageService) GetWeeklyUsage(ctx context.Context, email string) ([UsageWindowDays]int, error) {
	var buckets [UsageWindowDays]int

	events, err := s.usageRepo.List(ctx, email)
	if err != nil {
		return buckets, err
	}
	return BucketUsage(events, s.now()), nil
}

// BucketUsage 以今天 23:59:59.999 为基准按 24 小时分桶，超出窗口或未来的事件忽略
func BucketUsage(events []time.Time, now time.Time) [UsageWindowDays]int {
	var buckets [UsageWindowDays]int

	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, int(999*time.Millisecond), now.Location())
	for _, t := range events {
		diff := endOfToday.Sub(t)
		if diff < 0 {
			continue
		}
		days := int(diff / (24 * time.Hour))
		if days < UsageWindowDays {
			buckets[UsageWindowDays-1-days]++
		}
	}
	return buckets
}

// WeeklyUsage 带日期标签的用量
func (s *UsageService) WeeklyUsage(ctx context.Context, email string) (*dto.WeeklyUsageResponse, error) {
	days, err := s.GetWeeklyUsage(ctx, email)
	if err != nil {
		return nil, err
	}

	resp := &dto.WeeklyUsageResponse{
		Days:   days,
		Labels: UsageLabels(s.now()),
	}
	for _, n := range days {
		resp.Total += n
	}
	return resp, nil
}

// UsageLabels 每个桶对应的星期缩写
func UsageLabels(now time.Time) []string {
	labels := make([]string, UsageWindowDays)
	for i := 0; i < UsageWindowDays; i++ {
		day := now.AddDate(0, 0, i-(UsageWindowDays-1))
		labels[i] = day.Format("Mon")
	}
	return labels
}
