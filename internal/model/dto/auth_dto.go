package dto

// ========== Auth 相关 DTO ==========

// LoginRequest 手机号加验证码登录，首次登录自动建号
type LoginRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int              `json:"expires_in"`
	User         AuthUserSnapshot `json:"user"`
}

// AuthUserSnapshot 登录时的用户快照
type AuthUserSnapshot struct {
	ID            string `json:"id"`
	Nickname      string `json:"nickname"`
	Phone         string `json:"phone"`
	PhoneVerified bool   `json:"phone_verified"`
	IsNewUser     bool   `json:"is_new_user"`
}

// RefreshTokenRequest 刷新 token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshTokenResponse 刷新 token 响应
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}
