package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs3c/ecomwords_server/config"
	"github.com/qs3c/ecomwords_server/internal/api/handler"
	"github.com/qs3c/ecomwords_server/internal/api/middleware"
	"github.com/qs3c/ecomwords_server/internal/service"
)

type Router struct {
	authHandler       *handler.AuthHandler
	userHandler       *handler.UserHandler
	generationHandler *handler.GenerationHandler
	listingHandler    *handler.ListingHandler
	paymentHandler    *handler.PaymentHandler
	feedbackHandler   *handler.FeedbackHandler
	catalogHandler    *handler.CatalogHandler
	websocketHandler  *handler.WebSocketHandler
	creditService     *service.CreditService
	adminChecker      middleware.AdminChecker
	cfg               *config.Config
	logger            *zap.Logger
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	generationHandler *handler.GenerationHandler,
	listingHandler *handler.ListingHandler,
	paymentHandler *handler.PaymentHandler,
	feedbackHandler *handler.FeedbackHandler,
	catalogHandler *handler.CatalogHandler,
	websocketHandler *handler.WebSocketHandler,
	creditService *service.CreditService,
	adminChecker middleware.AdminChecker,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		authHandler:       authHandler,
		userHandler:       userHandler,
		generationHandler: generationHandler,
		listingHandler:    listingHandler,
		paymentHandler:    paymentHandler,
		feedbackHandler:   feedbackHandler,
		catalogHandler:    catalogHandler,
		websocketHandler:  websocketHandler,
		creditService:     creditService,
		adminChecker:      adminChecker,
		cfg:               cfg,
		logger:            logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(r.logger))
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/signup", r.authHandler.Signup)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 公开接口 - 选项与套餐
		api.GET("/catalog", r.catalogHandler.Get)
		api.GET("/plans", r.catalogHandler.Plans)

		// 可选认证：未登录也可提交
		optional := api.Group("")
		optional.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			optional.POST("/payments", r.paymentHandler.Submit)
			optional.POST("/feedback", r.feedbackHandler.Submit)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
				user.GET("/credits", r.userHandler.GetCredits)
				user.GET("/usage/weekly", r.userHandler.GetWeeklyUsage)
			}
			authenticated.DELETE("/user", r.userHandler.DeleteAccount)

			// 生成
			authenticated.POST("/generate", middleware.CreditCheck(r.creditService), r.generationHandler.Generate)

			// 保存的文案
			listings := authenticated.Group("/listings")
			{
				listings.GET("", r.listingHandler.List)
				listings.POST("", r.listingHandler.Save)
				listings.DELETE("/:id", r.listingHandler.Delete)
			}

			authenticated.GET("/payments", r.paymentHandler.ListMine)
		}

		// 管理员
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly(r.adminChecker))
		{
			admin.GET("/payments", r.paymentHandler.List)
			admin.POST("/payments/:id/approve", r.paymentHandler.Approve)
			admin.POST("/payments/:id/reject", r.paymentHandler.Reject)
			admin.GET("/feedback", r.feedbackHandler.List)
		}
	}

	return engine
}
