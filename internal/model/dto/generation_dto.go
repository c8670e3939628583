package dto

import "github.com/qs3c/ecomwords_server/internal/model"

// GenerateRequest 生成请求，Image 为 data URL（data:image/png;base64,...）
type GenerateRequest struct {
	ProductName       string `json:"product_name"`
	Features          string `json:"features"`
	Template          string `json:"template" binding:"required"`
	Tone              string `json:"tone" binding:"required"`
	Language          string `json:"language" binding:"required"`
	DescriptionLength string `json:"description_length" binding:"required"`
	Image             string `json:"image,omitempty"`
}

type GenerateResponse struct {
	Content    *model.GeneratedContent `json:"content"`
	CreditInfo *CreditInfo             `json:"credit_info"`
}

// WeeklyUsageResponse 最近 7 天用量，从旧到新，最后一项为今天
type WeeklyUsageResponse struct {
	Days   [7]int   `json:"days"`
	Labels []string `json:"labels"`
	Total  int      `json:"total"`
}
