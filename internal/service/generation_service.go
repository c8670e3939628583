package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/internal/generator"
	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
)

// ListingGenerator 文案生成，生产环境为 generator.Pipeline
type ListingGenerator interface {
	Generate(ctx context.Context, r *generator.Request) (*model.GeneratedContent, error)
}

// GenerationOutcome Refused 为 true 时模型未被调用，Content 为空
type GenerationOutcome struct {
	Refused    bool
	Message    string
	Content    *model.GeneratedContent
	CreditInfo *dto.CreditInfo
}

type GenerationService struct {
	generator     ListingGenerator
	creditService *CreditService
	usageService  *UsageService
	logger        *zap.Logger
}

func NewGenerationService(
	gen ListingGenerator,
	creditService *CreditService,
	usageService *UsageService,
	logger *zap.Logger,
) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{
		generator:     gen,
		creditService: creditService,
		usageService:  usageService,
		logger:        logger,
	}
}

// NewGenerationRequest 将接口参数转换为生成请求，图片为 data URL
func NewGenerationRequest(req *dto.GenerateRequest) (*generator.Request, error) {
	r := &generator.Request{
		ProductName:       req.ProductName,
		Features:          req.Features,
		Template:          req.Template,
		Tone:              req.Tone,
		Language:          req.Language,
		DescriptionLength: req.DescriptionLength,
	}
	if strings.TrimSpace(req.Image) != "" {
		img, err := generator.DecodeDataURL(strings.TrimSpace(req.Image))
		if err != nil {
			return nil, err
		}
		r.Image = img
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Generate 检查次数，调用模型，成功后扣减次数并记录用量
func (s *GenerationService) Generate(ctx context.Context, userID int64, r *generator.Request) (*GenerationOutcome, error) {
	allowed, user, err := s.creditService.CheckCredits(userID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return refusal(user), nil
	}

	content, err := s.generator.Generate(ctx, r)
	if err != nil {
		s.logger.Warn("generation failed",
			zap.String("email", logger.MaskEmail(user.Email)),
			zap.String("template", r.Template),
			zap.Bool("image", r.Image != nil),
			zap.Error(err))
		return nil, err
	}

	info, err := s.creditService.ConsumeCredit(user)
	if err != nil {
		if errors.Is(err, ErrCreditsExhausted) {
			user.Credits = 0
			return refusal(user), nil
		}
		return nil, err
	}

	s.usageService.RecordGeneration(ctx, user.Email)

	return &GenerationOutcome{
		Content:    content,
		CreditInfo: info,
	}, nil
}

func refusal(user *model.User) *GenerationOutcome {
	return &GenerationOutcome{
		Refused:    true,
		Message:    RefusalMessage,
		CreditInfo: buildCreditInfo(user),
	}
}
