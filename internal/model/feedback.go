package model

import (
	"time"
)

// GuestEmail 未登录用户提交反馈时使用
const GuestEmail = "Guest"

type Feedback struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserEmail string    `gorm:"size:100;index" json:"user_email"`
	Category  string    `gorm:"size:50" json:"category"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (Feedback) TableName() string {
	return "feedback"
}
