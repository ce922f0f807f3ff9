package model

import "time"

// Frequency 叫醒频率枚举
type Frequency string

const (
	FrequencyOnce     Frequency = "once"     // 单次
	FrequencyDaily    Frequency = "daily"    // 每天
	FrequencyWeekly   Frequency = "weekly"   // 每周同一天
	FrequencyWeekdays Frequency = "weekdays" // 周一到周五
	FrequencyWeekends Frequency = "weekends" // 周六周日
	FrequencyCustom   Frequency = "custom"   // 自选星期
)

// CallStatus 叫醒任务状态枚举
type CallStatus string

const (
	CallStatusActive    CallStatus = "active"
	CallStatusPaused    CallStatus = "paused"
	CallStatusCompleted CallStatus = "completed" // once 任务执行完毕
	CallStatusCancelled CallStatus = "cancelled"
)

// ContactMethod 触达方式枚举
type ContactMethod string

const (
	ContactMethodCall ContactMethod = "call"
	ContactMethodSMS  ContactMethod = "sms"
	ContactMethodBoth ContactMethod = "both"
)

// WakeupCall 叫醒任务模型
type WakeupCall struct {
	BaseModel
	UserID   int64  `gorm:"not null;index:idx_wakeup_calls_user_status" json:"user_id"`
	Phone    string `gorm:"type:varchar(20);not null" json:"phone"`
	Timezone string `gorm:"type:varchar(64);not null;default:'America/New_York'" json:"timezone"`

	// HH:MM，按任务自身时区解释
	WakeupTime string `gorm:"type:varchar(5);not null" json:"wakeup_time"`

	Frequency Frequency  `gorm:"type:varchar(16);not null;default:'once'" json:"frequency"`
	Status    CallStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_wakeup_calls_user_status" json:"status"`

	// custom 频率的自选星期
	Monday    bool `gorm:"not null;default:false" json:"monday"`
	Tuesday   bool `gorm:"not null;default:false" json:"tuesday"`
	Wednesday bool `gorm:"not null;default:false" json:"wednesday"`
	Thursday  bool `gorm:"not null;default:false" json:"thursday"`
	Friday    bool `gorm:"not null;default:false" json:"friday"`
	Saturday  bool `gorm:"not null;default:false" json:"saturday"`
	Sunday    bool `gorm:"not null;default:false" json:"sunday"`

	ContactMethod ContactMethod `gorm:"type:varchar(8);not null;default:'call'" json:"contact_method"`
	Message       string        `gorm:"type:text;not null;default:''" json:"message"`

	IncludeWeather bool   `gorm:"not null;default:false" json:"include_weather"`
	ZipCode        string `gorm:"type:varchar(10);not null;default:''" json:"zip_code"`

	// 调度字段，dispatcher 扫描 next_execution_at 到期的任务
	NextExecutionAt *time.Time `gorm:"type:timestamptz;index:idx_wakeup_calls_next_execution" json:"next_execution_at,omitempty"`
	LastExecutedAt  *time.Time `gorm:"type:timestamptz" json:"last_executed_at,omitempty"`
}

// TableName 指定表名
func (WakeupCall) TableName() string {
	return "wakeup_calls"
}

// ActiveOnWeekday 判断任务在给定星期几是否生效
func (w *WakeupCall) ActiveOnWeekday(day time.Weekday) bool {
	switch w.Frequency {
	case FrequencyOnce, FrequencyDaily:
		return true
	case FrequencyWeekdays:
		return day >= time.Monday && day <= time.Friday
	case FrequencyWeekends:
		return day == time.Saturday || day == time.Sunday
	case FrequencyCustom:
		switch day {
		case time.Monday:
			return w.Monday
		case time.Tuesday:
			return w.Tuesday
		case time.Wednesday:
			return w.Wednesday
		case time.Thursday:
			return w.Thursday
		case time.Friday:
			return w.Friday
		case time.Saturday:
			return w.Saturday
		case time.Sunday:
			return w.Sunday
		}
	}
	return false
}

// HasCustomDay 判断 custom 任务是否至少勾选了一个星期
func (w *WakeupCall) HasCustomDay() bool {
	return w.Monday || w.Tuesday || w.Wednesday || w.Thursday || w.Friday || w.Saturday || w.Sunday
}

// ValidFrequency 判断频率取值是否合法
func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyWeekdays, FrequencyWeekends, FrequencyCustom:
		return true
	}
	return false
}

// ValidContactMethod 判断触达方式取值是否合法
func ValidContactMethod(m ContactMethod) bool {
	switch m {
	case ContactMethodCall, ContactMethodSMS, ContactMethodBoth:
		return true
	}
	return false
}
