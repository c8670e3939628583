package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelPaymentEvents = "ecomwords:payment_events"
)

// 事件类型
const (
	EventPaymentSubmitted = "payment_submitted"
	EventPaymentReviewed  = "payment_reviewed"
)

// PaymentEvent 支付状态变化，推送给对应用户
type PaymentEvent struct {
	Type      string    `json:"type"`
	PaymentID string    `json:"payment_id"`
	UserEmail string    `json:"user_email"`
	PlanName  string    `json:"plan_name"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishPaymentEvent 发布支付事件，At 为空时填当前时间
func (p *Publisher) PublishPaymentEvent(ctx context.Context, event *PaymentEvent) error {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}
	return p.client.Publish(ctx, ChannelPaymentEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 阻塞直到 ctx 结束，无法解析的消息忽略
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*PaymentEvent)) error {
	sub := s.client.Subscribe(ctx, ChannelPaymentEvents)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", ChannelPaymentEvents, err)
	}
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event PaymentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			handler(&event)
		}
	}
}
