package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/ecomwords_server/internal/repository"
	"github.com/qs3c/ecomwords_server/internal/testutil"
)

func setupUsageService(t *testing.T, now time.Time) (*UsageService, *repository.UsageRepository) {
	t.Helper()

	_, rdb := testutil.SetupTestRedis(t)
	repo := repository.NewUsageRepository(rdb)
	service := NewUsageService(repo, nil)
	service.now = func() time.Time { return now }
	return service, repo
}

func TestUsageService_NoEvents(t *testing.T) {
	service, _ := setupUsageService(t, time.Now())

	days, err := service.GetWeeklyUsage(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, [7]int{0, 0, 0, 0, 0, 0, 0}, days)
}

func TestUsageService_OneEventToday(t *testing.T) {
	now := time.Date(2026, 3, 12, 10, 30, 0, 0, time.UTC)
	service, _ := setupUsageService(t, now)
	ctx := context.Background()

	service.RecordGeneration(ctx, "Seller@Example.com")

	days, err := service.GetWeeklyUsage(ctx, "seller@example.com")
	require.NoError(t, err)
	assert.Equal(t, [7]int{0, 0, 0, 0, 0, 0, 1}, days)
}

func TestUsageService_Buckets(t *testing.T) {
	now := time.Date(2026, 3, 12, 10, 30, 0, 0, time.UTC)
	service, repo := setupUsageService(t, now)
	ctx := context.Background()
	email := "buckets@example.com"

	startOfToday := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	events := []time.Time{
		startOfToday,                   // 今天
		startOfToday.Add(-time.Minute), // 昨天
		now.AddDate(0, 0, -3),          // 3 天前
		now.AddDate(0, 0, -3),          // 3 天前
		startOfToday.AddDate(0, 0, -6), // 窗口内最早的一天
		startOfToday.AddDate(0, 0, -7), // 超出窗口
		now.AddDate(0, 0, 2),           // 未来
	}
	for _, at := range events {
		require.NoError(t, repo.Append(ctx, email, at))
	}

	days, err := service.GetWeeklyUsage(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, [7]int{1, 0, 0, 2, 0, 1, 1}, days)
}

func TestUsageService_SkipsMalformedEntries(t *testing.T) {
	now := time.Now()
	_, rdb := testutil.SetupTestRedis(t)
	repo := repository.NewUsageRepository(rdb)
	service := NewUsageService(repo, nil)
	service.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, rdb.RPush(ctx, "ecomwords_usage_bad@example.com", "not-a-number").Err())
	require.NoError(t, repo.Append(ctx, "bad@example.com", now))

	days, err := service.GetWeeklyUsage(ctx, "bad@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, days[6])
}

func TestUsageService_WeeklyUsage(t *testing.T) {
	// 2026-03-12 为周四
	now := time.Date(2026, 3, 12, 10, 30, 0, 0, time.UTC)
	service, _ := setupUsageService(t, now)
	ctx := context.Background()

	service.RecordGeneration(ctx, "labels@example.com")
	service.RecordGeneration(ctx, "labels@example.com")

	resp, err := service.WeeklyUsage(ctx, "labels@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"Fri", "Sat", "Sun", "Mon", "Tue", "Wed", "Thu"}, resp.Labels)
}

func TestUsageService_RecordGenerationSwallowsErrors(t *testing.T) {
	mr, rdb := testutil.SetupTestRedis(t)
	service := NewUsageService(repository.NewUsageRepository(rdb), nil)
	mr.Close()

	assert.NotPanics(t, func() {
		service.RecordGeneration(context.Background(), "down@example.com")
	})
}
