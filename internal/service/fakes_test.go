package service

import (
	"context"
	"errors"
	"sync"

	"github.com/qs3c/ecomwords_server/internal/generator"
	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/pkg/pubsub"
)

type dispatched struct {
	Kind      string
	To        string
	PlanName  string
	PaymentID string
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []dispatched
	fails int

	// entered 在进入 Dispatch 时收到信号，gate 关闭前 Dispatch 一直阻塞
	entered chan struct{}
	gate    chan struct{}
}

func (n *fakeNotifier) Dispatch(ctx context.Context, kind, to, planName, paymentID string) error {
	if n.entered != nil {
		select {
		case n.entered <- struct{}{}:
		default:
		}
	}
	if n.gate != nil {
		<-n.gate
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fails > 0 {
		n.fails--
		return errors.New("queue unavailable")
	}
	n.sent = append(n.sent, dispatched{Kind: kind, To: to, PlanName: planName, PaymentID: paymentID})
	return nil
}

func (n *fakeNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]string, 0, len(n.sent))
	for _, d := range n.sent {
		kinds = append(kinds, d.Kind)
	}
	return kinds
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*pubsub.PaymentEvent
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func (p *fakePublisher) PublishPaymentEvent(ctx context.Context, event *pubsub.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
}

func (s *fakeStorage) Upload(objectKey string, data []byte) (string, error) {
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[objectKey] = data
	return "https://cdn.example.com/" + objectKey, nil
}

type fakeGenerator struct {
	calls   int
	content *model.GeneratedContent
	err     error
}

func (g *fakeGenerator) Generate(ctx context.Context, r *generator.Request) (*model.GeneratedContent, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.content, nil
}
