package utils

import (
	"time"
)

// ParseTimeOfDay 解析 HH:MM 格式的时间字符串
func ParseTimeOfDay(timeStr string) (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", timeStr)
	if err != nil {
		return 0, 0, err
	}
	return parsed.Hour(), parsed.Minute(), nil
}

// CombineDate 将 HH:MM 应用到指定日期，保留日期所在时区
func CombineDate(date time.Time, hour, minute int) time.Time {
	return time.Date(
		date.Year(),
		date.Month(),
		date.Day(),
		hour,
		minute,
		0,
		0,
		date.Location(),
	)
}

// TruncateMinute 去掉秒和纳秒，调度全部以分钟对齐
func TruncateMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// FormatTimeOfDay 输出 HH:MM
func FormatTimeOfDay(hour, minute int) string {
	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format("15:04")
}
