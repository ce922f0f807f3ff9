package model

import "time"

// User 用户模型
type User struct {
	BaseModel
	PublicID      int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	Nickname      string     `gorm:"type:varchar(64);not null;default:''" json:"nickname"`
	Phone         string     `gorm:"uniqueIndex;type:varchar(20);not null" json:"phone"`
	PhoneVerified bool       `gorm:"not null;default:false" json:"phone_verified"`
	VerifiedAt    *time.Time `gorm:"type:timestamptz" json:"verified_at,omitempty"`

	// 默认设置，新建叫醒任务时作为缺省值
	Timezone string `gorm:"type:varchar(64);not null;default:'America/New_York'" json:"timezone"`
	ZipCode  string `gorm:"type:varchar(10);not null;default:''" json:"zip_code"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
