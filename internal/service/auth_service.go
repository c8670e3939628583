package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/ecomwords_server/config"
	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/model/dto"
	"github.com/qs3c/ecomwords_server/internal/pkg/jwt"
	"github.com/qs3c/ecomwords_server/internal/pkg/logger"
	"github.com/qs3c/ecomwords_server/internal/pkg/oauth"
	"github.com/qs3c/ecomwords_server/internal/repository"
)

// MinPasswordLength 注册密码最短长度
const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicateAccount   = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrOAuthDisabled      = errors.New("github sign-in is not configured")
)

type AuthService struct {
	userRepo    *repository.UserRepository
	cfg         *config.Config
	githubOAuth *oauth.GithubOAuth
	stateStore  *oauth.StateStore
	logger      *zap.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	githubOAuth *oauth.GithubOAuth,
	stateStore *oauth.StateStore,
	cfg *config.Config,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:    userRepo,
		cfg:         cfg,
		githubOAuth: githubOAuth,
		stateStore:  stateStore,
		logger:      logger,
	}
}

// DisplayNameFromEmail 由邮箱本地部分生成名字，. 和 _ 逐个替换为空格，每个词边界后的首字符大写
func DisplayNameFromEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)

	var b strings.Builder
	b.Grow(len(local))
	boundary := true
	for _, r := range local {
		word := unicode.IsLetter(r) || unicode.IsDigit(r)
		if word && boundary {
			r = unicode.ToUpper(r)
		}
		boundary = !word
		b.WriteRune(r)
	}
	return b.String()
}

// Signup 注册 Free 账号
func (s *AuthService) Signup(req *dto.SignupRequest) (*dto.LoginResponse, error) {
	email := model.NormalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAccount
	}
	if len(req.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hash := string(hashed)

	user := &model.User{
		Email:        email,
		Name:         DisplayNameFromEmail(req.Email),
		PasswordHash: &hash,
		Plan:         model.PlanFree,
		Credits:      s.cfg.FreeCredits(),
		IsAdmin:      s.cfg.IsAdminEmail(email),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("email", logger.MaskEmail(email)))
	return s.issueToken(user)
}

// Login 邮箱密码登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *model.User) (*dto.LoginResponse, error) {
	token, err := jwt.GenerateToken(user.ID, user.Email, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  buildUserInfo(user),
	}, nil
}

// GetGithubAuthURL 生成 state 并返回授权地址
func (s *AuthService) GetGithubAuthURL(ctx context.Context, returnTo string) (string, error) {
	if s.githubOAuth == nil || !s.githubOAuth.Enabled() || s.stateStore == nil {
		return "", ErrOAuthDisabled
	}
	state, err := s.stateStore.GenerateState(ctx, returnTo)
	if err != nil {
		return "", err
	}
	return s.githubOAuth.GetAuthURL(state), nil
}

// GithubCallback 处理回调，返回登录结果和跳转地址
func (s *AuthService) GithubCallback(ctx context.Context, code, state string) (*dto.LoginResponse, string, error) {
	if s.githubOAuth == nil || !s.githubOAuth.Enabled() || s.stateStore == nil {
		return nil, "", ErrOAuthDisabled
	}
	returnTo, err := s.stateStore.ConsumeState(ctx, state)
	if err != nil {
		return nil, "", err
	}

	token, err := s.githubOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange code: %w", err)
	}
	githubUser, err := s.githubOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get github user: %w", err)
	}

	user, err := s.findOrCreateGithubUser(githubUser)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.issueToken(user)
	return resp, returnTo, err
}

// findOrCreateGithubUser 先按 GitHub ID 查找，再按邮箱绑定，都没有则创建 Free 账号
func (s *AuthService) findOrCreateGithubUser(gh *oauth.GithubUser) (*model.User, error) {
	githubID := fmt.Sprintf("%d", gh.ID)

	user, err := s.userRepo.GetByGithubID(githubID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err = s.userRepo.GetByEmail(gh.Email)
	if err == nil {
		fields := map[string]interface{}{"github_id": githubID}
		if user.AvatarURL == "" && gh.AvatarURL != "" {
			fields["avatar_url"] = gh.AvatarURL
			user.AvatarURL = gh.AvatarURL
		}
		if err := s.userRepo.UpdateFields(user.ID, fields); err != nil {
			return nil, err
		}
		user.GithubID = &githubID
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := model.NormalizeEmail(gh.Email)
	name := gh.DisplayName()
	if name == "" {
		name = DisplayNameFromEmail(email)
	}
	user = &model.User{
		Email:     email,
		Name:      name,
		GithubID:  &githubID,
		AvatarURL: gh.AvatarURL,
		Plan:      model.PlanFree,
		Credits:   s.cfg.FreeCredits(),
		IsAdmin:   s.cfg.IsAdminEmail(email),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user signed up with github", zap.String("email", logger.MaskEmail(email)))
	return user, nil
}
