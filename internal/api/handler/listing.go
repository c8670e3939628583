package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/ecomwords_server/internal/api/middleware"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/response"
	"github.com/qs3c/ecomwords_server/internal/service"
)

type ListingHandler struct {
	listingService *service.ListingService
}

func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// List 已保存的文案
// GET /api/v1/listings
func (h *ListingHandler) List(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	listings, err := h.listingService.List(email)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, &dto.ListingListResponse{
		Total:    len(listings),
		Listings: listings,
	})
}

// Save 保存一条生成结果
// POST /api/v1/listings
func (h *ListingHandler) Save(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.SaveListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	listing, err := h.listingService.Save(email, &req.Content, req.ProductName)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "listing saved", listing)
}

// Delete 删除保存的文案
// DELETE /api/v1/listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	if err := h.listingService.Delete(email, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "listing deleted", nil)
}
