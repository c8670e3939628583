package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const deadLetterSuffix = ":dead"

// Queue 基于 Redis 列表的 FIFO 队列
type Queue struct {
	client    *redis.Client
	queueName string
}

// NotificationMessage 待发送的通知
type NotificationMessage struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	To         string    `json:"to"`
	PlanName   string    `json:"plan_name"`
	PaymentID  string    `json:"payment_id,omitempty"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"last_error,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

func (q *Queue) Name() string {
	return q.queueName
}

// Push 将消息加入队列
func (q *Queue) Push(ctx context.Context, msg *NotificationMessage) error {
	return q.push(ctx, q.queueName, msg)
}

// PushDead 投递失败的消息放入死信队列
func (q *Queue) PushDead(ctx context.Context, msg *NotificationMessage) error {
	return q.push(ctx, q.queueName+deadLetterSuffix, msg)
}

// Requeue 放回队首，下一次 Pop 最先取到
func (q *Queue) Requeue(ctx context.Context, msg *NotificationMessage) error {
	data, err := encode(msg)
	if err != nil {
		return err
	}
	return q.client.RPush(ctx, q.queueName, data).Err()
}

func (q *Queue) push(ctx context.Context, key string, msg *NotificationMessage) error {
	data, err := encode(msg)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, key, data).Err()
}

func encode(msg *NotificationMessage) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return data, nil
}

// Pop 阻塞获取消息，超时返回 nil
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*NotificationMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}
	if len(result) < 2 {
		return nil, nil
	}

	var msg NotificationMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &msg, nil
}

func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}

func (q *Queue) DeadLength(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName+deadLetterSuffix).Result()
}
