package dto

import "time"

// ========== WakeupCall 相关 DTO ==========

// CreateCallRequest 创建叫醒任务请求
type CreateCallRequest struct {
	Phone          string `json:"phone"`
	WakeupTime     string `json:"wakeup_time"` // HH:MM
	Timezone       string `json:"timezone"`
	Frequency      string `json:"frequency"`
	ContactMethod  string `json:"contact_method"`
	Message        string `json:"message"`
	IncludeWeather bool   `json:"include_weather"`
	ZipCode        string `json:"zip_code"`

	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// UpdateCallRequest 更新叫醒任务请求，指针字段区分未传和零值
type UpdateCallRequest struct {
	Phone          *string `json:"phone,omitempty"`
	WakeupTime     *string `json:"wakeup_time,omitempty"`
	Timezone       *string `json:"timezone,omitempty"`
	Frequency      *string `json:"frequency,omitempty"`
	ContactMethod  *string `json:"contact_method,omitempty"`
	Message        *string `json:"message,omitempty"`
	IncludeWeather *bool   `json:"include_weather,omitempty"`
	ZipCode        *string `json:"zip_code,omitempty"`

	Monday    *bool `json:"monday,omitempty"`
	Tuesday   *bool `json:"tuesday,omitempty"`
	Wednesday *bool `json:"wednesday,omitempty"`
	Thursday  *bool `json:"thursday,omitempty"`
	Friday    *bool `json:"friday,omitempty"`
	Saturday  *bool `json:"saturday,omitempty"`
	Sunday    *bool `json:"sunday,omitempty"`
}

// CallData 叫醒任务响应数据
type CallData struct {
	ID              int64      `json:"id"`
	Phone           string     `json:"phone"`
	WakeupTime      string     `json:"wakeup_time"`
	Timezone        string     `json:"timezone"`
	Frequency       string     `json:"frequency"`
	Status          string     `json:"status"`
	ContactMethod   string     `json:"contact_method"`
	Message         string     `json:"message"`
	IncludeWeather  bool       `json:"include_weather"`
	ZipCode         string     `json:"zip_code"`
	Days            []string   `json:"days,omitempty"` // custom 频率勾选的星期
	NextExecutionAt *time.Time `json:"next_execution_at,omitempty"`
	LastExecutedAt  *time.Time `json:"last_executed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ListCallsQuery 任务列表查询参数
type ListCallsQuery struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

// StatsData 当前用户的任务与执行统计
type StatsData struct {
	ActiveCalls     int64 `json:"active_calls"`
	PausedCalls     int64 `json:"paused_calls"`
	CompletedCalls  int64 `json:"completed_calls"`
	CancelledCalls  int64 `json:"cancelled_calls"`
	TotalExecutions int64 `json:"total_executions"`
	Completed       int64 `json:"completed_executions"`
	Failed          int64 `json:"failed_executions"`
	Snoozes         int64 `json:"snooze_executions"`
}
