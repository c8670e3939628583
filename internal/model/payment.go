package model

import (
	"time"
)

// 支付状态，只允许 Pending -> Approved / Pending -> Rejected
const (
	PaymentPending  = "Pending"
	PaymentApproved = "Approved"
	PaymentRejected = "Rejected"
)

type PaymentRecord struct {
	ID               string     `gorm:"primaryKey;size:16" json:"id"`
	UserEmail        string     `gorm:"size:100;not null;index" json:"user_email"`
	MobileNumber     string     `gorm:"size:10;not null" json:"mobile_number"`
	PlanName         string     `gorm:"size:20;not null" json:"plan_name"`
	Amount           string     `gorm:"size:50" json:"amount"`
	UTR              string     `gorm:"column:utr;size:64" json:"utr"`
	ScreenshotName   string     `gorm:"size:255" json:"screenshot_name"`
	ScreenshotURL    string     `gorm:"size:500" json:"screenshot_url,omitempty"`
	Status           string     `gorm:"size:20;default:Pending;index" json:"status"`
	PlanApplied      bool       `gorm:"default:false" json:"plan_applied"`
	NotificationSent bool       `gorm:"default:false" json:"notification_sent"`
	SubmittedAt      time.Time  `gorm:"index" json:"date"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	// 补做步骤的租约，持有者才能执行升级和通知
	EffectsLeaseToken string     `gorm:"size:36" json:"-"`
	EffectsLeaseUntil *time.Time `gorm:"index" json:"-"`
}

func (PaymentRecord) TableName() string {
	return "payments"
}

// IsFinal 是否已审核
func (p *PaymentRecord) IsFinal() bool {
	return p.Status == PaymentApproved || p.Status == PaymentRejected
}

// NeedsPlanUpgrade 审核通过且为付费套餐时需要升级
func (p *PaymentRecord) NeedsPlanUpgrade() bool {
	return p.Status == PaymentApproved && IsPaidPlan(p.PlanName)
}

// EffectsComplete 审核后的副作用是否全部完成
func (p *PaymentRecord) EffectsComplete() bool {
	if !p.IsFinal() {
		return true
	}
	if p.NeedsPlanUpgrade() && !p.PlanApplied {
		return false
	}
	return p.NotificationSent
}
