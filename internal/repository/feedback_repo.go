package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/ecomwords_server/internal/model"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(feedback *model.Feedback) error {
	return r.db.Create(feedback).Error
}

func (r *FeedbackRepository) ListRecent(limit int) ([]*model.Feedback, error) {
	var items []*model.Feedback
	err := r.db.Order("created_at DESC").Limit(limit).Find(&items).Error
	return items, err
}
