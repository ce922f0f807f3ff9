package model

import "time"

// ExecutionStatus 单次执行状态枚举
type ExecutionStatus string

const (
	ExecutionStatusPending    ExecutionStatus = "pending"
	ExecutionStatusInProgress ExecutionStatus = "in_progress"
	ExecutionStatusCompleted  ExecutionStatus = "completed"
	ExecutionStatusFailed     ExecutionStatus = "failed"
	ExecutionStatusCancelled  ExecutionStatus = "cancelled"
)

// CallExecution 单次叫醒执行记录
type CallExecution struct {
	BaseModel
	WakeupCallID int64 `gorm:"not null;index:idx_call_executions_call_scheduled" json:"wakeup_call_id"`

	ScheduledAt time.Time  `gorm:"type:timestamptz;not null;index:idx_call_executions_call_scheduled" json:"scheduled_at"`
	StartedAt   *time.Time `gorm:"type:timestamptz" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"type:timestamptz" json:"completed_at,omitempty"`

	Status ExecutionStatus `gorm:"type:varchar(16);not null;default:'pending';index:idx_call_executions_status" json:"status"`

	// 运营商侧标识，回执用它定位执行记录
	ProviderSID    string `gorm:"type:varchar(64);index:idx_call_executions_provider_sid" json:"provider_sid"`
	DeliveryStatus string `gorm:"type:varchar(32);not null;default:''" json:"delivery_status"`

	// 用户在 IVR 中的按键或语音反馈
	UserResponse string `gorm:"type:text;not null;default:''" json:"user_response"`

	// 贪睡产生的执行记录，问候语会换成贪睡版本
	Snoozed bool `gorm:"not null;default:false" json:"snoozed"`

	ErrorMessage string `gorm:"type:text;not null;default:''" json:"error_message"`
	RetryCount   int    `gorm:"not null;default:0" json:"retry_count"`
}

// TableName 指定表名
func (CallExecution) TableName() string {
	return "call_executions"
}
