package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/ecomwords_server/internal/pkg/response"
)

// AdminChecker 查询用户是否为管理员
type AdminChecker interface {
	IsAdmin(userID int64) (bool, error)
}

// AdminOnly 管理员接口，需放在 Auth 之后
func AdminOnly(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		isAdmin, err := checker.IsAdmin(userID)
		if err != nil {
			response.ServerError(c, "")
			c.Abort()
			return
		}
		if !isAdmin {
			response.PermissionError(c, "admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
