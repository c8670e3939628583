package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
	"github.com/qs3c/ecomwords_server/internal/pkg/oss"
	"github.com/qs3c/ecomwords_server/internal/repository"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidPlan    = errors.New("unknown plan")
	ErrStorageMissing = errors.New("file storage is not configured")
	ErrInvalidImage   = errors.New("only image files are allowed")
	ErrInvalidName    = errors.New("name must not be empty")
)

// FileStorage 对象存储，生产环境为 OSS
type FileStorage interface {
	Upload(objectKey string, data []byte) (string, error)
}

type UserService struct {
	userRepo  *repository.UserRepository
	usageRepo *repository.UsageRepository
	storage   FileStorage
	logger    *zap.Logger
}

func NewUserService(
	userRepo *repository.UserRepository,
	usageRepo *repository.UsageRepository,
	storage FileStorage,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:  userRepo,
		usageRepo: usageRepo,
		storage:   storage,
		logger:    logger,
	}
}

// GetProfile 获取用户详情
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return buildUserInfo(user), nil
}

// IsAdmin 管理员判断以数据库为准
func (s *UserService) IsAdmin(userID int64) (bool, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.IsAdmin, nil
}

// UpdateUserName 修改显示名称
func (s *UserService) UpdateUserName(email, name string) (*dto.UserInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Name = name
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"name": user.Name}); err != nil {
		return nil, err
	}
	return buildUserInfo(user), nil
}

// DeleteUser 删除账号，同时删除保存的文案和用量记录
func (s *UserService) DeleteUser(ctx context.Context, email string) error {
	affected, err := s.userRepo.DeleteWithListings(email)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	if s.usageRepo != nil {
		if err := s.usageRepo.Delete(ctx, email); err != nil {
			s.logger.Warn("failed to delete usage log",
				zap.String("email", logger.MaskEmail(email)), zap.Error(err))
		}
	}

	s.logger.Info("user deleted", zap.String("email", logger.MaskEmail(email)))
	return nil
}

// UpgradeUserPlan 变更套餐，付费套餐不限次数
func (s *UserService) UpgradeUserPlan(email, plan string) error {
	plan = model.NormalizePlan(plan)
	if plan == "" {
		return ErrInvalidPlan
	}

	credits := 0
	if model.IsPaidPlan(plan) {
		credits = model.UnlimitedCredits
	}

	affected, err := s.userRepo.UpdatePlanByEmail(email, plan, credits)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UploadAvatar 上传用户头像
func (s *UserService) UploadAvatar(userID int64, file io.Reader, filename string) (string, error) {
	if s.storage == nil {
		return "", ErrStorageMissing
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	if !oss.IsImageExt(ext) {
		return "", ErrInvalidImage
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	avatarURL, err := s.storage.Upload(oss.AvatarKey(userID, ext), data)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateFields(userID, map[string]interface{}{"avatar_url": avatarURL}); err != nil {
		return "", err
	}
	return avatarURL, nil
}

func buildCreditInfo(user *model.User) *dto.CreditInfo {
	return &dto.CreditInfo{
		Plan:      user.Plan,
		Credits:   user.Credits,
		Unlimited: user.HasUnlimitedCredits(),
	}
}

func buildUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		AvatarURL:  user.AvatarURL,
		Plan:       user.Plan,
		IsAdmin:    user.IsAdmin,
		CreditInfo: buildCreditInfo(user),
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
}
