package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/ecomwords_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	user.Email = model.NormalizeEmail(user.Email)
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 邮箱不区分大小写
func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", model.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByGithubID(githubID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("github_id = ?", githubID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", model.NormalizeEmail(email)).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// UpdatePlanByEmail 返回受影响行数，0 表示用户不存在
func (r *UserRepository) UpdatePlanByEmail(email, plan string, credits int) (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("email = ?", model.NormalizeEmail(email)).
		Updates(map[string]interface{}{"plan": plan, "credits": credits})
	return result.RowsAffected, result.Error
}

// ConsumeCredit 条件更新扣减一次，次数为 0 时返回 false
func (r *UserRepository) ConsumeCredit(id int64) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND credits > 0", id).
		Update("credits", gorm.Expr("credits - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteWithListings 删除用户及其保存的文案
func (r *UserRepository) DeleteWithListings(email string) (int64, error) {
	email = model.NormalizeEmail(email)
	var affected int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_email = ?", email).Delete(&model.SavedListing{}).Error; err != nil {
			return err
		}
		result := tx.Where("email = ?", email).Delete(&model.User{})
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	return affected, err
}
