package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/repository"
)

// RefusalMessage 次数用完时返回给前端的提示
const RefusalMessage = "You have no credits remaining. Please upgrade your plan to continue generating."

var ErrCreditsExhausted = errors.New("no credits remaining")

type CreditService struct {
	userRepo *repository.UserRepository
}

func NewCreditService(userRepo *repository.UserRepository) *CreditService {
	return &CreditService{userRepo: userRepo}
}

// IsRefused Free 套餐次数用完时拒绝生成
func IsRefused(user *model.User) bool {
	return user.Plan == model.PlanFree && user.Credits <= 0
}

// CheckCredits 返回是否允许生成以及当前用户
func (s *CreditService) CheckCredits(userID int64) (bool, *model.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, ErrUserNotFound
		}
		return false, nil, err
	}
	return !IsRefused(user), user, nil
}

// ConsumeCredit 生成成功后扣减一次，付费套餐不扣减。返回扣减后的次数信息
func (s *CreditService) ConsumeCredit(user *model.User) (*dto.CreditInfo, error) {
	if user.Plan != model.PlanFree {
		return buildCreditInfo(user), nil
	}

	ok, err := s.userRepo.ConsumeCredit(user.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 并发请求已用完
		return nil, ErrCreditsExhausted
	}

	return s.GetCreditInfo(user.ID)
}

// GetCreditInfo 查询剩余次数
func (s *CreditService) GetCreditInfo(userID int64) (*dto.CreditInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return buildCreditInfo(user), nil
}
