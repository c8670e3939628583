package dto

// SignupRequest 注册请求，密码长度由服务层校验
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录/注册成功后返回
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID         int64       `json:"id"`
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	AvatarURL  string      `json:"avatar_url"`
	Plan       string      `json:"plan"`
	IsAdmin    bool        `json:"is_admin"`
	CreditInfo *CreditInfo `json:"credit_info,omitempty"`
	CreatedAt  string      `json:"created_at,omitempty"`
}

// CreditInfo 剩余次数，Unlimited 为 true 时 Credits 为 -1
type CreditInfo struct {
	Plan      string `json:"plan"`
	Credits   int    `json:"credits"`
	Unlimited bool   `json:"unlimited"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}
