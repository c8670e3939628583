package service

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
	"github.com/qs3c/ecomwords_server/internal/repository"
)

// 默认反馈分类
const DefaultFeedbackCategory = "General"

var ErrInvalidFeedback = errors.New("feedback message is required")

type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
	logger       *zap.Logger
}

func NewFeedbackService(feedbackRepo *repository.FeedbackRepository, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{feedbackRepo: feedbackRepo, logger: logger}
}

// Submit 未登录时 email 传空串，记为 Guest
func (s *FeedbackService) Submit(email, category, message string) (*model.Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrInvalidFeedback
	}

	email = model.NormalizeEmail(email)
	if email == "" {
		email = model.GuestEmail
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultFeedbackCategory
	}

	feedback := &model.Feedback{
		UserEmail: email,
		Category:  category,
		Message:   message,
	}
	if err := s.feedbackRepo.Create(feedback); err != nil {
		return nil, err
	}

	s.logger.Info("feedback received",
		zap.String("from", logger.MaskEmail(email)),
		zap.String("category", category))
	return feedback, nil
}

func (s *FeedbackService) ListRecent(limit int) ([]*model.Feedback, error) {
	return s.feedbackRepo.ListRecent(limit)
}
