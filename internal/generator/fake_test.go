package generator

import (
	"context"
	"sync"
)

type fakeReply struct {
	text string
	err  error
}

// fakeClient 按顺序返回预设结果并记录请求
type fakeClient struct {
	mu       sync.Mutex
	replies  []fakeReply
	requests []*ModelRequest
}

func newFakeClient(replies ...fakeReply) *fakeClient {
	return &fakeClient{replies: replies}
}

func (f *fakeClient) GenerateContent(ctx context.Context, req *ModelRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return r.text, r.err
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
