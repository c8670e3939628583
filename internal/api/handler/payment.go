package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/ecomwords_server/internal/api/middleware"
	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/response"
	"github.com/qs3c/ecomwords_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	maxScreenshot  int64
}

func NewPaymentHandler(paymentService *service.PaymentService, maxScreenshot int64) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		maxScreenshot:  maxScreenshot,
	}
}

// Submit 提交付款信息，截图可选
// POST /api/v1/payments
func (h *PaymentHandler) Submit(c *gin.Context) {
	var req dto.SubmitPaymentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	in := &service.SubmitPaymentInput{
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		PlanName:     req.PlanName,
		Amount:       req.Amount,
		UTR:          req.UTR,
	}
	if strings.TrimSpace(in.Email) == "" {
		in.Email, _ = middleware.GetEmail(c)
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if file, err := c.FormFile("screenshot"); err == nil {
			if h.maxScreenshot > 0 && file.Size > h.maxScreenshot {
				response.ParamError(c, service.ErrScreenshotTooLarge.Error())
				return
			}
			f, err := file.Open()
			if err != nil {
				response.ServerError(c, "failed to read screenshot")
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				response.ServerError(c, "failed to read screenshot")
				return
			}
			in.ScreenshotName = file.Filename
			in.Screenshot = data
		}
	}

	record, err := h.paymentService.SubmitPayment(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPaymentDetails),
			errors.Is(err, service.ErrScreenshotTooLarge),
			errors.Is(err, service.ErrInvalidImage):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "payment submitted, we will verify it shortly", record)
}

// ListMine 当前用户的付款记录
// GET /api/v1/payments
func (h *PaymentHandler) ListMine(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	payments, err := h.paymentService.ListUserPayments(email)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, &dto.PaymentListResponse{
		Total:    len(payments),
		Payments: payments,
	})
}

// List 全部付款记录（管理员）
// GET /api/v1/admin/payments
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.paymentService.ListPayments()
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, &dto.PaymentListResponse{
		Total:    len(payments),
		Payments: payments,
	})
}

// Approve 审核通过
// POST /api/v1/admin/payments/:id/approve
func (h *PaymentHandler) Approve(c *gin.Context) {
	h.review(c, model.PaymentApproved)
}

// Reject 审核拒绝
// POST /api/v1/admin/payments/:id/reject
func (h *PaymentHandler) Reject(c *gin.Context) {
	h.review(c, model.PaymentRejected)
}

func (h *PaymentHandler) review(c *gin.Context, status string) {
	record, err := h.paymentService.ReviewPayment(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentFinalized):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrInvalidPaymentDetails),
			errors.Is(err, service.ErrInvalidStatus):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}
	if record == nil {
		response.NotFoundError(c, "payment not found")
		return
	}

	response.SuccessWithMessage(c, "payment "+strings.ToLower(status), record)
}
