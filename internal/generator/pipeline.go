package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/internal/model"
)

// Config 模型选择与调用参数
type Config struct {
	TextModel   string
	VisionModel string
	Temperature float32
	Timeout     time.Duration
	MaxRetries  int
}

// Pipeline 组装请求、调用模型并解析结果
type Pipeline struct {
	client     ModelClient
	cfg        Config
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

func NewPipeline(client ModelClient, cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		client: client,
		cfg:    cfg,
		logger: logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
}

// BuildModelRequest 有图片时图片在文本指令之前且不约束输出结构
func (p *Pipeline) BuildModelRequest(r *Request) *ModelRequest {
	prompt := BuildPrompt(r)
	if r.Image != nil {
		return &ModelRequest{
			Model: p.cfg.VisionModel,
			Parts: []Part{
				{Text: imageDirective},
				{MIMEType: r.Image.MIMEType, Data: r.Image.Data},
				{Text: prompt},
			},
			Temperature: p.cfg.Temperature,
		}
	}
	return &ModelRequest{
		Model:       p.cfg.TextModel,
		Parts:       []Part{{Text: prompt}},
		Temperature: p.cfg.Temperature,
		Schema:      ListingSchema,
	}
}

// Generate 生成一份商品文案，只有可重试错误会重试
func (p *Pipeline) Generate(ctx context.Context, r *Request) (*model.GeneratedContent, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if p.client == nil {
		return nil, ErrMissingConfiguration
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	req := p.BuildModelRequest(r)
	var content *model.GeneratedContent
	attempt := 0

	op := func() error {
		attempt++
		text, err := p.client.GenerateContent(ctx, req)
		if err != nil {
			if IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		parsed, err := ParseContent(text)
		if err != nil {
			return backoff.Permanent(err)
		}
		content = parsed
		return nil
	}

	notify := func(err error, wait time.Duration) {
		p.logger.Warn("model call failed, retrying",
			zap.String("model", req.Model),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	var b backoff.BackOff = p.newBackOff()
	if p.cfg.MaxRetries >= 0 {
		b = backoff.WithMaxRetries(b, uint64(p.cfg.MaxRetries))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		p.logger.Error("listing generation failed",
			zap.String("model", req.Model),
			zap.Int("attempts", attempt),
			zap.Error(err))
		if errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrMalformedResponse) ||
			errors.Is(err, ErrMissingConfiguration) {
			return nil, err
		}
		return nil, fmt.Errorf("call model: %w", err)
	}

	p.logger.Debug("listing generated",
		zap.String("model", req.Model),
		zap.Int("attempts", attempt),
		zap.Int("titles", len(content.Titles)))
	return content, nil
}
