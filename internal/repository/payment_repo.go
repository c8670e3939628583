package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/ecomwords_server/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(payment *model.PaymentRecord) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepository) GetByID(id string) (*model.PaymentRecord, error) {
	var payment model.PaymentRecord
	err := r.db.Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ExistsByID(id string) (bool, error) {
	var count int64
	err := r.db.Model(&model.PaymentRecord{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List 全部记录，最新提交的在前
func (r *PaymentRepository) List() ([]*model.PaymentRecord, error) {
	var payments []*model.PaymentRecord
	err := r.db.Order("submitted_at DESC").Order("id DESC").Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) ListByEmail(email string) ([]*model.PaymentRecord, error) {
	var payments []*model.PaymentRecord
	err := r.db.Where("user_email = ?", model.NormalizeEmail(email)).
		Order("submitted_at DESC").
		Find(&payments).Error
	return payments, err
}

// CompareAndSetStatus 仅当当前状态为 from 时更新，返回是否更新成功
func (r *PaymentRepository) CompareAndSetStatus(id, from, to string, reviewedAt time.Time) (bool, error) {
	result := r.db.Model(&model.PaymentRecord{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "reviewed_at": reviewedAt})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CompareAndSetStatusLeased 状态变更的同时写入补做租约，状态变更成功即持有租约
func (r *PaymentRepository) CompareAndSetStatusLeased(id, from, to string, reviewedAt time.Time, token string, until time.Time) (bool, error) {
	result := r.db.Model(&model.PaymentRecord{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":              to,
			"reviewed_at":         reviewedAt,
			"effects_lease_token": token,
			"effects_lease_until": until,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *PaymentRepository) MarkPlanApplied(id string) error {
	return r.db.Model(&model.PaymentRecord{}).Where("id = ?", id).Update("plan_applied", true).Error
}

func (r *PaymentRepository) MarkNotificationSent(id string) error {
	return r.db.Model(&model.PaymentRecord{}).Where("id = ?", id).Update("notification_sent", true).Error
}

// AcquireEffectsLease 租约为空或已过期时写入 token，返回是否拿到租约
func (r *PaymentRepository) AcquireEffectsLease(id, token string, now, until time.Time) (bool, error) {
	result := r.db.Model(&model.PaymentRecord{}).
		Where("id = ?", id).
		Where(r.db.Where("effects_lease_until IS NULL").Or("effects_lease_until < ?", now)).
		Updates(map[string]interface{}{"effects_lease_token": token, "effects_lease_until": until})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseEffectsLease 只释放自己持有的租约
func (r *PaymentRepository) ReleaseEffectsLease(id, token string) error {
	return r.db.Model(&model.PaymentRecord{}).
		Where("id = ? AND effects_lease_token = ?", id, token).
		Updates(map[string]interface{}{"effects_lease_token": "", "effects_lease_until": nil}).Error
}

// ListIncomplete 已审核但副作用未完成、且当前无人持有租约的记录
func (r *PaymentRepository) ListIncomplete(limit int, now time.Time) ([]*model.PaymentRecord, error) {
	var payments []*model.PaymentRecord
	query := r.db.
		Where("status IN ?", []string{model.PaymentApproved, model.PaymentRejected}).
		Where(r.db.Where("notification_sent = ?", false).
			Or("status = ? AND plan_name IN ? AND plan_applied = ?",
				model.PaymentApproved, []string{model.PlanPro, model.PlanBusiness}, false)).
		Where(r.db.Where("effects_lease_until IS NULL").Or("effects_lease_until < ?", now)).
		Order("reviewed_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&payments).Error
	return payments, err
}
