package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestPublisherSubscriber(t *testing.T) {
	mr, client := setupTestRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *PaymentEvent, 1)
	go func() {
		_ = NewSubscriber(client).Subscribe(ctx, func(e *PaymentEvent) {
			received <- e
		})
	}()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("")) > 0
	}, 2*time.Second, 10*time.Millisecond)

	err := NewPublisher(client).PublishPaymentEvent(ctx, &PaymentEvent{
		Type:      EventPaymentReviewed,
		PaymentID: "ABC123XYZ",
		UserEmail: "a@x.com",
		PlanName:  "Pro",
		Status:    "Approved",
	})
	require.NoError(t, err)

	select {
	case e := <-received:
		assert.Equal(t, EventPaymentReviewed, e.Type)
		assert.Equal(t, "ABC123XYZ", e.PaymentID)
		assert.Equal(t, "a@x.com", e.UserEmail)
		assert.False(t, e.At.IsZero())
	case <-ctx.Done():
		t.Fatal("timeout waiting for event")
	}
}

func TestSubscriber_IgnoresInvalidPayload(t *testing.T) {
	mr, client := setupTestRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *PaymentEvent, 2)
	go func() {
		_ = NewSubscriber(client).Subscribe(ctx, func(e *PaymentEvent) {
			received <- e
		})
	}()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("")) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mr.Publish(ChannelPaymentEvents, "{broken")
	require.NoError(t, NewPublisher(client).PublishPaymentEvent(ctx, &PaymentEvent{PaymentID: "OK"}))

	select {
	case e := <-received:
		assert.Equal(t, "OK", e.PaymentID)
	case <-ctx.Done():
		t.Fatal("timeout waiting for event")
	}
}

func TestSubscriber_StopsOnCancel(t *testing.T) {
	_, client := setupTestRedis(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewSubscriber(client).Subscribe(ctx, func(*PaymentEvent) {})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}
