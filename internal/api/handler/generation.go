package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/ecomwords_server/internal/api/middleware"
	"github.com/qs3c/ecomwords_server/internal/generator"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/response"
	"github.com/qs3c/ecomwords_server/internal/service"
)

type GenerationHandler struct {
	generationService *service.GenerationService
}

func NewGenerationHandler(generationService *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// Generate 生成商品文案
// POST /api/v1/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	genReq, err := service.NewGenerationRequest(&req)
	if err != nil {
		response.ParamError(c, err.Error())
		return
	}

	outcome, err := h.generationService.Generate(c.Request.Context(), userID, genReq)
	if err != nil {
		switch {
		case errors.Is(err, generator.ErrInvalidInput):
			response.ParamError(c, err.Error())
		case errors.Is(err, generator.ErrEmptyResponse),
			errors.Is(err, generator.ErrMalformedResponse):
			response.GenerationError(c, "")
		case errors.Is(err, generator.ErrMissingConfiguration):
			response.ServerError(c, "generation service is not configured")
		case errors.Is(err, service.ErrUserNotFound):
			response.AuthError(c, "account no longer exists")
		case generator.IsTransient(err):
			response.GenerationError(c, "the AI service is busy, please try again")
		default:
			response.ServerError(c, "")
		}
		return
	}

	if outcome.Refused {
		response.ErrorWithData(c, response.CodeCreditsExhausted, outcome.Message, outcome.CreditInfo)
		return
	}

	response.Success(c, &dto.GenerateResponse{
		Content:    outcome.Content,
		CreditInfo: outcome.CreditInfo,
	})
}
