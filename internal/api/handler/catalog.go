package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/ecomwords_server/config"
	"github.com/qs3c/ecomwords_server/internal/generator"
	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/response"
)

// planOrder 套餐展示顺序
var planOrder = []string{model.PlanFree, model.PlanPro, model.PlanBusiness}

type CatalogHandler struct {
	cfg *config.Config
}

func NewCatalogHandler(cfg *config.Config) *CatalogHandler {
	return &CatalogHandler{cfg: cfg}
}

// Get 可选模板、语气、语言与套餐
// GET /api/v1/catalog
func (h *CatalogHandler) Get(c *gin.Context) {
	response.Success(c, &dto.CatalogResponse{
		Templates:          generator.Templates,
		Tones:              generator.Tones,
		Languages:          generator.Languages,
		DescriptionLengths: generator.Lengths,
		Plans:              h.plans(),
	})
}

// Plans 套餐列表
// GET /api/v1/plans
func (h *CatalogHandler) Plans(c *gin.Context) {
	response.Success(c, h.plans())
}

func (h *CatalogHandler) plans() []dto.PlanInfo {
	plans := make([]dto.PlanInfo, 0, len(planOrder))
	for _, name := range planOrder {
		key := model.PlanKey(name)
		p, ok := h.cfg.Plans[key]
		if !ok {
			continue
		}
		display := p.DisplayName
		if display == "" {
			display = name
		}
		plans = append(plans, dto.PlanInfo{
			Key:         key,
			Name:        display,
			Price:       p.Price,
			PricePeriod: p.PricePeriod,
			YearlyPrice: p.YearlyPrice,
			Description: p.Description,
			Credits:     p.Credits,
			Features:    p.Features,
			Featured:    p.Featured,
		})
	}
	return plans
}
