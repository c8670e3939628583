package handler

import (
	"context"
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/ecomwords_server/internal/generator"
	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/response"
	"github.com/qs3c/ecomwords_server/internal/repository"
	"github.com/qs3c/ecomwords_server/internal/service"
	"github.com/qs3c/ecomwords_server/internal/testutil"
)

type stubGenerator struct {
	calls   int
	content *model.GeneratedContent
	err     error
}

func (g *stubGenerator) Generate(ctx context.Context, r *generator.Request) (*model.GeneratedContent, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.content, nil
}

func sampleContent() *model.GeneratedContent {
	return &model.GeneratedContent{
		Titles:      []string{"Pure Cotton Handloom Saree", "Handwoven Saree for Festive Wear"},
		Description: "Soft, breathable and handwoven by artisans.",
		Bullets:     []string{"100% cotton", "Handwoven"},
		Keywords:    []string{"saree", "handloom"},
	}
}

func validGenerateRequest() dto.GenerateRequest {
	return dto.GenerateRequest{
		ProductName:       "Handloom Saree",
		Features:          "cotton, handwoven",
		Template:          generator.TemplateAmazon,
		Tone:              generator.ToneProfessional,
		Language:          generator.LanguageEnglish,
		DescriptionLength: generator.LengthShort,
	}
}

func setupGenerationHandler(t *testing.T, gen *stubGenerator) (*GenerationHandler, *testContext) {
	t.Helper()

	ctx := newTestContext(t)
	userRepo := repository.NewUserRepository(ctx.DB)
	usageRepo := repository.NewUsageRepository(ctx.Redis)

	creditService := service.NewCreditService(userRepo)
	usageService := service.NewUsageService(usageRepo, nil)
	generationService := service.NewGenerationService(gen, creditService, usageService, nil)

	return NewGenerationHandler(generationService), ctx
}

func TestGenerationHandler_Generate_Success(t *testing.T) {
	gen := &stubGenerator{content: sampleContent()}
	handler, ctx := setupGenerationHandler(t, gen)
	user := testutil.TestUser(t, ctx.DB, testutil.WithPlan(model.PlanFree, 2))

	router := gin.New()
	router.Use(mockAuth(user.ID, user.Email))
	router.POST("/generate", handler.Generate)

	w := performRequest(router, "POST", "/generate", validGenerateRequest())
	resp := parseResponse(t, w)

	require.Equal(t, response.CodeSuccess, resp.Code)
	data := dataMap(t, resp)
	content := data["content"].(map[string]interface{})
	assert.Len(t, content["titles"], 2)
	creditInfo := data["credit_info"].(map[string]interface{})
	assert.Equal(t, float64(1), creditInfo["credits"])
	assert.Equal(t, 1, gen.calls)

	var stored model.User
	require.NoError(t, ctx.DB.First(&stored, user.ID).Error)
	assert.Equal(t, 1, stored.Credits)

	events, err := repository.NewUsageRepository(ctx.Redis).List(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestGenerationHandler_Generate_Refused(t *testing.T) {
	gen := &stubGenerator{content: sampleContent()}
	handler, ctx := setupGenerationHandler(t, gen)
	user := testutil.TestUser(t, ctx.DB, testutil.WithPlan(model.PlanFree, 0))

	router := gin.New()
	router.Use(mockAuth(user.ID, user.Email))
	router.POST("/generate", handler.Generate)

	w := performRequest(router, "POST", "/generate", validGenerateRequest())
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeCreditsExhausted, resp.Code)
	assert.Equal(t, service.RefusalMessage, resp.Message)
	assert.Equal(t, float64(0), dataMap(t, resp)["credits"])
	assert.Zero(t, gen.calls)
}

func TestGenerationHandler_Generate_PaidPlanNotDecremented(t *testing.T) {
	gen := &stubGenerator{content: sampleContent()}
	handler, ctx := setupGenerationHandler(t, gen)
	user := testutil.TestUser(t, ctx.DB, testutil.WithPlan(model.PlanBusiness, model.UnlimitedCredits))

	router := gin.New()
	router.Use(mockAuth(user.ID, user.Email))
	router.POST("/generate", handler.Generate)

	for i := 0; i < 3; i++ {
		w := performRequest(router, "POST", "/generate", validGenerateRequest())
		require.Equal(t, response.CodeSuccess, parseResponse(t, w).Code)
	}

	var stored model.User
	require.NoError(t, ctx.DB.First(&stored, user.ID).Error)
	assert.Equal(t, model.UnlimitedCredits, stored.Credits)
}

func TestGenerationHandler_Generate_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.GenerateRequest)
	}{
		{"missing product name", func(r *dto.GenerateRequest) { r.ProductName = "  " }},
		{"unknown template", func(r *dto.GenerateRequest) { r.Template = "eBay" }},
		{"unknown tone", func(r *dto.GenerateRequest) { r.Tone = "Angry" }},
		{"bad image", func(r *dto.GenerateRequest) { r.Image = "not-a-data-url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{content: sampleContent()}
			handler, ctx := setupGenerationHandler(t, gen)
			user := testutil.TestUser(t, ctx.DB)

			router := gin.New()
			router.Use(mockAuth(user.ID, user.Email))
			router.POST("/generate", handler.Generate)

			req := validGenerateRequest()
			tt.mutate(&req)
			w := performRequest(router, "POST", "/generate", req)

			assert.Equal(t, response.CodeParamError, parseResponse(t, w).Code)
			assert.Zero(t, gen.calls)
		})
	}
}

func TestGenerationHandler_Generate_ModelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"empty response", generator.ErrEmptyResponse, response.CodeGenerationFailed},
		{"malformed response", generator.ErrMalformedResponse, response.CodeGenerationFailed},
		{"missing api key", generator.ErrMissingConfiguration, response.CodeServerError},
		{"transient failure", fmt.Errorf("call model: %w", &generator.TransientError{Err: fmt.Errorf("503")}), response.CodeGenerationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{err: tt.err}
			handler, ctx := setupGenerationHandler(t, gen)
			user := testutil.TestUser(t, ctx.DB, testutil.WithPlan(model.PlanFree, 1))

			router := gin.New()
			router.Use(mockAuth(user.ID, user.Email))
			router.POST("/generate", handler.Generate)

			w := performRequest(router, "POST", "/generate", validGenerateRequest())
			assert.Equal(t, tt.wantCode, parseResponse(t, w).Code)

			// 失败不扣次数
			var stored model.User
			require.NoError(t, ctx.DB.First(&stored, user.ID).Error)
			assert.Equal(t, 1, stored.Credits)
		})
	}
}
