package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/ecomwords_server/internal/api/middleware"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/response"
	"github.com/qs3c/ecomwords_server/internal/service"
)

const defaultFeedbackLimit = 50

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// Submit 提交反馈，未登录时记为 Guest
// POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	email, _ := middleware.GetEmail(c)
	feedback, err := h.feedbackService.Submit(email, req.Category, req.Message)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFeedback) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "thank you for your feedback", feedback)
}

// List 最近的反馈（管理员）
// GET /api/v1/admin/feedback?limit=50
func (h *FeedbackHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultFeedbackLimit)))
	if limit <= 0 {
		limit = defaultFeedbackLimit
	}

	items, err := h.feedbackService.ListRecent(limit)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"total":    len(items),
		"feedback": items,
	})
}
