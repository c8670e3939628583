package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/ecomwords_server/internal/api/middleware"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/response"
	"github.com/qs3c/ecomwords_server/internal/service"
)

const maxAvatarSize = 5 * 1024 * 1024

type UserHandler struct {
	userService   *service.UserService
	creditService *service.CreditService
	usageService  *service.UsageService
}

func NewUserHandler(
	userService *service.UserService,
	creditService *service.CreditService,
	usageService *service.UsageService,
) *UserHandler {
	return &UserHandler{
		userService:   userService,
		creditService: creditService,
		usageService:  usageService,
	}
}

// GetProfile 获取当前用户信息
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	profile, err := h.userService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, profile)
}

// UpdateProfile 修改显示名称
// PUT /api/v1/user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	profile, err := h.userService.UpdateUserName(email, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidName):
			response.ParamError(c, err.Error())
			return
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "profile updated", profile)
}

// DeleteAccount 删除账号及其保存的文案
// DELETE /api/v1/user
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "account deleted", nil)
}

// UploadAvatar 上传头像
// POST /api/v1/user/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.ParamError(c, "please choose a file")
		return
	}

	if file.Size > maxAvatarSize {
		response.ParamError(c, "file must be smaller than 5MB")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ServerError(c, "failed to read file")
		return
	}
	defer f.Close()

	avatarURL, err := h.userService.UploadAvatar(userID, f, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidImage):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrStorageMissing):
			response.ServerError(c, err.Error())
		default:
			response.ServerError(c, "upload failed")
		}
		return
	}

	response.SuccessWithMessage(c, "avatar updated", gin.H{
		"avatar_url": avatarURL,
	})
}

// GetCredits 当前剩余次数
// GET /api/v1/user/credits
func (h *UserHandler) GetCredits(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.creditService.GetCreditInfo(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFoundError(c, err.Error())
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, info)
}

// GetWeeklyUsage 最近 7 天生成次数
// GET /api/v1/user/usage/weekly
func (h *UserHandler) GetWeeklyUsage(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	usage, err := h.usageService.WeeklyUsage(c.Request.Context(), email)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, usage)
}
