package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/qs3c/ecomwords_server/internal/model"
)

const usageKeyPrefix = "ecomwords_usage_"

// UsageRepository 每个用户一个 Redis 列表，元素为毫秒时间戳
type UsageRepository struct {
	rdb *redis.Client
}

func NewUsageRepository(rdb *redis.Client) *UsageRepository {
	return &UsageRepository{rdb: rdb}
}

func usageKey(email string) string {
	return usageKeyPrefix + model.NormalizeEmail(email)
}

func (r *UsageRepository) Append(ctx context.Context, email string, at time.Time) error {
	return r.rdb.RPush(ctx, usageKey(email), at.UnixMilli()).Err()
}

// List 返回全部事件时间，无法解析的元素跳过
func (r *UsageRepository) List(ctx context.Context, email string) ([]time.Time, error) {
	raw, err := r.rdb.LRange(ctx, usageKey(email), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	events := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		events = append(events, time.UnixMilli(ms))
	}
	return events, nil
}

func (r *UsageRepository) Delete(ctx context.Context, email string) error {
	return r.rdb.Del(ctx, usageKey(email)).Err()
}
