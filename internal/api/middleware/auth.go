package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/pkg/jwt"
	"github.com/qs3c/ecomwords_server/internal/pkg/response"
)

// 登录身份在 gin 上下文中的键
const (
	UserIDKey = "userID"
	EmailKey  = "email"
)

var (
	errNoSession        = errors.New("please sign in to continue")
	errMalformedSession = errors.New("malformed authorization header")
	errExpiredSession   = errors.New("session has expired, please sign in again")
	errInvalidSession   = errors.New("session is invalid")
)

// sessionClaims 解析 Authorization: Bearer <token>
func sessionClaims(c *gin.Context, secret string) (*jwt.Claims, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return nil, errNoSession
	}

	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, errMalformedSession
	}

	claims, err := jwt.ParseToken(token, secret)
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return nil, errExpiredSession
	case err != nil:
		return nil, errInvalidSession
	}
	return claims, nil
}

func setSession(c *gin.Context, claims *jwt.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(EmailKey, model.NormalizeEmail(claims.Email))
}

// Auth 需要登录的接口，会话缺失或失效时返回 1001
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := sessionClaims(c, secret)
		if err != nil {
			response.AuthError(c, err.Error())
			c.Abort()
			return
		}
		setSession(c, claims)
		c.Next()
	}
}

// OptionalAuth 结账和反馈接口，带有效会话时补充身份，否则按匿名处理
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := sessionClaims(c, secret); err == nil {
			setSession(c, claims)
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) (int64, bool) {
	id, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	userID, ok := id.(int64)
	return userID, ok && userID > 0
}

// GetEmail 已登录用户的邮箱，已转小写
func GetEmail(c *gin.Context) (string, bool) {
	v, ok := c.Get(EmailKey)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok && email != ""
}
