package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/ecomwords_server/internal/model"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(listing *model.SavedListing) error {
	return r.db.Create(listing).Error
}

// ListByEmail 按保存时间倒序
func (r *ListingRepository) ListByEmail(email string) ([]*model.SavedListing, error) {
	var listings []*model.SavedListing
	err := r.db.Where("user_email = ?", model.NormalizeEmail(email)).
		Order("saved_at DESC").
		Find(&listings).Error
	return listings, err
}

// Delete 只删除属于该用户的文案，返回受影响行数
func (r *ListingRepository) Delete(email, id string) (int64, error) {
	result := r.db.Where("id = ? AND user_email = ?", id, model.NormalizeEmail(email)).
		Delete(&model.SavedListing{})
	return result.RowsAffected, result.Error
}

func (r *ListingRepository) DeleteByEmail(email string) error {
	return r.db.Where("user_email = ?", model.NormalizeEmail(email)).Delete(&model.SavedListing{}).Error
}

func (r *ListingRepository) CountByEmail(email string) (int64, error) {
	var count int64
	err := r.db.Model(&model.SavedListing{}).Where("user_email = ?", model.NormalizeEmail(email)).Count(&count).Error
	return count, err
}
