package model

// DeliveryMessage 投递消息，dispatcher 扫描到期任务后发给 worker
type DeliveryMessage struct {
	MessageID   string `json:"message_id"` // 消息唯一ID，用于幂等性检查
	ExecutionID int64  `json:"execution_id"`
	CallID      int64  `json:"call_id"`
	UserID      int64  `json:"user_id"`
	ScheduledAt string `json:"scheduled_at"` // RFC3339，执行记录的原定时间

	// 任务快照（扫描时的设置），worker 投递前会重新核对任务状态
	Phone          string `json:"phone"`
	ContactMethod  string `json:"contact_method"`
	Message        string `json:"message"`
	IncludeWeather bool   `json:"include_weather"`
	ZipCode        string `json:"zip_code"`
	Timezone       string `json:"timezone"`

	// 贪睡重拨时为 true，问候语会切换
	Snoozed      bool `json:"snoozed"`
	DelaySeconds int  `json:"delay_seconds"`
}
