package dto

import "github.com/qs3c/ecomwords_server/internal/model"

// SubmitPaymentRequest 支付提交，支持 JSON 或 multipart（截图字段为 screenshot）
type SubmitPaymentRequest struct {
	Email        string `json:"email" form:"email"`
	MobileNumber string `json:"mobile_number" form:"mobile_number"`
	PlanName     string `json:"plan_name" form:"plan_name" binding:"required"`
	Amount       string `json:"amount" form:"amount"`
	UTR          string `json:"utr" form:"utr"`
}

type PaymentListResponse struct {
	Total    int                    `json:"total"`
	Payments []*model.PaymentRecord `json:"payments"`
}
