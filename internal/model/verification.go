package model

import "time"

// PhoneVerification 手机号验证记录
type PhoneVerification struct {
	BaseModel
	UserID int64  `gorm:"not null;index:idx_phone_verifications_user" json:"user_id"`
	Phone  string `gorm:"type:varchar(20);not null;index:idx_phone_verifications_phone" json:"phone"`

	Code      string    `gorm:"type:varchar(6);not null" json:"-"`
	ExpiresAt time.Time `gorm:"type:timestamptz;not null" json:"expires_at"`

	Attempts   int        `gorm:"not null;default:0" json:"attempts"`
	VerifiedAt *time.Time `gorm:"type:timestamptz" json:"verified_at,omitempty"`
}

// TableName 指定表名
func (PhoneVerification) TableName() string {
	return "phone_verifications"
}

// Expired 判断验证码是否过期
func (v *PhoneVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// Exhausted 判断尝试次数是否用尽
func (v *PhoneVerification) Exhausted(maxAttempts int) bool {
	return v.Attempts >= maxAttempts
}
