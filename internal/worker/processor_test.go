package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qs3c/ecomwords_server/internal/pkg/email"
	"github.com/qs3c/ecomwords_server/internal/pkg/queue"
	"github.com/qs3c/ecomwords_server/internal/testutil"
)

type fakeSender struct {
	mu    sync.Mutex
	fails int
	sent  []*email.Message
}

func (s *fakeSender) Send(ctx context.Context, msg *email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails > 0 {
		s.fails--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func setupProcessor(t *testing.T, sender email.Sender, maxRetries int) (*Processor, *queue.Queue, *observer.ObservedLogs) {
	t.Helper()

	_, rdb := testutil.SetupTestRedis(t)
	q := queue.NewQueue(rdb, "test:notifications")
	core, logs := observer.New(zap.InfoLevel)

	p := NewProcessor(q, sender, maxRetries, zap.New(core))
	p.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return p, q, logs
}

func TestProcessor_Process_Sends(t *testing.T) {
	sender := &fakeSender{}
	p, _, logs := setupProcessor(t, sender, 3)

	msg := &queue.NotificationMessage{ID: "n1", Kind: email.KindPlanActivated, To: "seller@example.com", PlanName: "Pro"}
	require.NoError(t, p.Process(context.Background(), msg))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "seller@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Subject, "Pro")
	assert.Equal(t, 1, msg.Attempts)
	assert.Equal(t, 1, logs.FilterMessage("notification sent").Len())
}

func TestProcessor_Process_RetriesTransientFailures(t *testing.T) {
	sender := &fakeSender{fails: 2}
	p, q, _ := setupProcessor(t, sender, 3)

	msg := &queue.NotificationMessage{ID: "n2", Kind: email.KindPaymentReceived, To: "seller@example.com", PlanName: "Business"}
	require.NoError(t, p.Process(context.Background(), msg))

	assert.Equal(t, 1, sender.count())
	assert.Equal(t, 3, msg.Attempts)

	dead, err := q.DeadLength(context.Background())
	require.NoError(t, err)
	assert.Zero(t, dead)
}

func TestProcessor_Process_DeadLetterAfterRetries(t *testing.T) {
	sender := &fakeSender{fails: 10}
	p, q, logs := setupProcessor(t, sender, 2)
	ctx := context.Background()

	msg := &queue.NotificationMessage{ID: "n3", Kind: email.KindPaymentRejected, To: "seller@example.com", PlanName: "Pro"}
	err := p.Process(ctx, msg)
	require.Error(t, err)

	assert.Zero(t, sender.count())
	assert.Equal(t, 3, msg.Attempts)
	assert.Equal(t, 1, logs.FilterMessage("notification dropped").Len())

	dead, err := q.DeadLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dead)
}

func TestProcessor_Process_UnknownKind(t *testing.T) {
	sender := &fakeSender{}
	p, q, _ := setupProcessor(t, sender, 3)
	ctx := context.Background()

	err := p.Process(ctx, &queue.NotificationMessage{ID: "n4", Kind: "newsletter", To: "seller@example.com"})
	assert.ErrorIs(t, err, email.ErrUnknownKind)
	assert.Zero(t, sender.count())

	dead, err := q.DeadLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dead)
}

func TestProcessor_Run(t *testing.T) {
	sender := &fakeSender{}
	p, q, _ := setupProcessor(t, sender, 1)

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Push(ctx, &queue.NotificationMessage{
			Kind: email.KindPaymentReceived, To: "seller@example.com", PlanName: "Pro",
		}))
	}

	done := make(chan struct{})
	go func() {
		p.Run(ctx, 2)
		close(done)
	}()

	require.Eventually(t, func() bool { return sender.count() == 3 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(7 * time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestProcessor_Run_ShutdownRequeuesInFlight(t *testing.T) {
	sender := email.NewLogSender(zap.NewNop(), 800*time.Millisecond)
	p, q, logs := setupProcessor(t, sender, 3)
	bg := context.Background()

	require.NoError(t, q.Push(bg, &queue.NotificationMessage{
		ID: "n-shutdown", Kind: email.KindPlanActivated, To: "seller@example.com", PlanName: "Pro", PaymentID: "PAY123456",
	}))

	ctx, cancel := context.WithCancel(bg)
	done := make(chan struct{})
	go func() {
		p.Run(ctx, 1)
		close(done)
	}()

	// 等 worker 取走消息，发送仍在进行中
	require.Eventually(t, func() bool {
		n, err := q.Length(bg)
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop")
	}

	length, err := q.Length(bg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	dead, err := q.DeadLength(bg)
	require.NoError(t, err)
	assert.Zero(t, dead)

	assert.Equal(t, 1, logs.FilterMessage("notification requeued").Len())
	assert.Zero(t, logs.FilterMessage("notification dropped").Len())

	msg, err := q.Pop(bg, time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "n-shutdown", msg.ID)
	assert.Equal(t, email.KindPlanActivated, msg.Kind)
	assert.Empty(t, msg.LastError)
}
