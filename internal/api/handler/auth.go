package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/oauth"
	"github.com/qs3c/ecomwords_server/internal/pkg/response"
	"github.com/qs3c/ecomwords_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup 用户注册
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Signup(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateAccount):
			response.DuplicateError(c, err.Error())
		case errors.Is(err, service.ErrWeakPassword):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "account created", resp)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "signed in", resp)
}

// GithubAuth 跳转到 GitHub 授权页
// GET /api/v1/auth/github?return_to=/dashboard
func (h *AuthHandler) GithubAuth(c *gin.Context) {
	authURL, err := h.authService.GetGithubAuthURL(c.Request.Context(), c.Query("return_to"))
	if err != nil {
		if errors.Is(err, service.ErrOAuthDisabled) {
			response.Error(c, response.CodeServerError, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// GithubCallback GitHub 回调，有 return_to 时带 token 跳回前端
// GET /api/v1/auth/github/callback
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "missing code")
		return
	}

	resp, returnTo, err := h.authService.GithubCallback(c.Request.Context(), code, c.Query("state"))
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrInvalidState):
			response.AuthError(c, err.Error())
		case errors.Is(err, service.ErrOAuthDisabled):
			response.Error(c, response.CodeServerError, err.Error())
		default:
			response.AuthError(c, "github sign-in failed")
		}
		return
	}

	if returnTo != "" {
		if target, err := url.Parse(returnTo); err == nil {
			q := target.Query()
			q.Set("token", resp.Token)
			target.RawQuery = q.Encode()
			c.Redirect(http.StatusFound, target.String())
			return
		}
	}

	response.SuccessWithMessage(c, "signed in", resp)
}
