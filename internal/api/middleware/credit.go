package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/ecomwords_server/internal/pkg/response"
	"github.com/qs3c/ecomwords_server/internal/service"
)

// CreditCheck 次数检查中间件，Free 套餐次数用完时直接拒绝，不调用模型
func CreditCheck(creditService *service.CreditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		allowed, user, err := creditService.CheckCredits(userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				response.AuthError(c, "account no longer exists")
			} else {
				response.ServerError(c, "")
			}
			c.Abort()
			return
		}

		if !allowed {
			info, _ := creditService.GetCreditInfo(user.ID)
			response.ErrorWithData(c, response.CodeCreditsExhausted, service.RefusalMessage, info)
			c.Abort()
			return
		}

		c.Next()
	}
}
