package model

import (
	"strings"
	"time"
)

// 套餐名称
const (
	PlanFree     = "Free"
	PlanPro      = "Pro"
	PlanBusiness = "Business"
)

// UnlimitedCredits 付费套餐不限生成次数
const UnlimitedCredits = -1

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"size:100" json:"name"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	GithubID     *string   `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	AvatarURL    string    `gorm:"size:500" json:"avatar_url,omitempty"`
	Plan         string    `gorm:"size:20;default:Free" json:"plan"`
	Credits      int       `gorm:"not null" json:"credits"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasUnlimitedCredits 是否不限次数
func (u *User) HasUnlimitedCredits() bool {
	return u.Credits == UnlimitedCredits
}

// IsPaidPlan 判断套餐是否为付费套餐
func IsPaidPlan(plan string) bool {
	return plan == PlanPro || plan == PlanBusiness
}

// NormalizePlan 将任意大小写的套餐名转换为标准名称，未知套餐返回空串
func NormalizePlan(plan string) string {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case "free":
		return PlanFree
	case "pro":
		return PlanPro
	case "business":
		return PlanBusiness
	default:
		return ""
	}
}

// PlanKey 套餐在配置文件中的键
func PlanKey(plan string) string {
	return strings.ToLower(plan)
}

// NormalizeEmail 邮箱统一小写存储
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
