package dto

// ========== User 相关 DTO ==========

// UserProfileData 用户资料数据
type UserProfileData struct {
	ID       string    `json:"id"`
	PublicID string    `json:"public_id"`
	Nickname string    `json:"nickname"`
	Phone    PhoneInfo `json:"phone"`

	Settings UserSettingsDTO `json:"settings"`
}

// PhoneInfo 手机号信息
type PhoneInfo struct {
	NumberMasked string `json:"number_masked"`
	Verified     bool   `json:"verified"`
}

// UserSettingsDTO 用户设置
type UserSettingsDTO struct {
	Timezone string `json:"timezone"`
	ZipCode  string `json:"zip_code"`
}

// UpdateUserSettingsRequest 更新用户设置请求
type UpdateUserSettingsRequest struct {
	Nickname *string `json:"nickname"`
	Timezone *string `json:"timezone"`
	ZipCode  *string `json:"zip_code"`
}
