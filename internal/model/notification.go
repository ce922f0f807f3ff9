package model

import (
	"time"

	"database/sql/driver"
	"encoding/json"
	"errors"
)

// NotificationChannel 通知渠道枚举
type NotificationChannel string

const (
	NotificationChannelSMS   NotificationChannel = "sms"
	NotificationChannelVoice NotificationChannel = "voice"
)

// NotificationLogStatus 通知记录状态枚举
type NotificationLogStatus string

const (
	NotificationLogStatusQueued    NotificationLogStatus = "queued"    // 已提交运营商
	NotificationLogStatusDelivered NotificationLogStatus = "delivered" // 回执确认送达
	NotificationLogStatusFailed    NotificationLogStatus = "failed"    // 投递失败
)

// NotificationLog 每次触达运营商的投递流水
type NotificationLog struct {
	BaseModel
	UserID       int64 `gorm:"not null;index:idx_notification_logs_user" json:"user_id"`
	ExecutionID  int64 `gorm:"not null;index:idx_notification_logs_execution" json:"execution_id"`
	WakeupCallID int64 `gorm:"not null" json:"wakeup_call_id"`

	Channel   NotificationChannel `gorm:"type:varchar(16);not null" json:"channel"`
	Recipient string              `gorm:"type:varchar(20);not null" json:"recipient"`
	Body      string              `gorm:"type:text;not null;default:''" json:"body"`

	Provider    string                `gorm:"type:varchar(16);not null" json:"provider"`
	ProviderSID string                `gorm:"type:varchar(64);index:idx_notification_logs_provider_sid" json:"provider_sid"`
	Status      NotificationLogStatus `gorm:"type:varchar(16);not null;default:'queued'" json:"status"`

	ErrorCode    string     `gorm:"type:varchar(32);not null;default:''" json:"error_code"`
	ErrorMessage string     `gorm:"type:varchar(255);not null;default:''" json:"error_message"`
	SentAt       time.Time  `gorm:"type:timestamptz;not null;default:now()" json:"sent_at"`
	DeliveredAt  *time.Time `gorm:"type:timestamptz" json:"delivered_at,omitempty"`

	Extra JSONB `gorm:"type:jsonb" json:"extra,omitempty"`
}

// TableName 指定表名
func (NotificationLog) TableName() string {
	return "notification_logs"
}

// JSONB 自定义 JSONB 类型
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value")
	}
	return json.Unmarshal(bytes, j)
}
