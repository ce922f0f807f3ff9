package dto

import "time"

// ========== CallExecution 相关 DTO ==========

// ExecutionData 执行记录响应数据
type ExecutionData struct {
	ID           int64      `json:"id"`
	WakeupCallID int64      `json:"wakeup_call_id"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Status       string     `json:"status"`
	UserResponse string     `json:"user_response,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	RetryCount   int        `json:"retry_count"`
	Snoozed      bool       `json:"snoozed"`
}

// ExecutionHistoryQuery 执行历史查询参数
type ExecutionHistoryQuery struct {
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
