package dto

import "github.com/qs3c/ecomwords_server/internal/model"

type SaveListingRequest struct {
	ProductName string                 `json:"product_name" binding:"required"`
	Content     model.GeneratedContent `json:"content"`
}

type ListingListResponse struct {
	Total    int                   `json:"total"`
	Listings []*model.SavedListing `json:"listings"`
}
