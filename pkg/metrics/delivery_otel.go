package metrics

import (
	"context"
)

// 包级别的便捷入口，指标未初始化时静默跳过

// RecordDelivery 记录一次投递结果
func RecordDelivery(ctx context.Context, method, provider, status string, duration float64) {
	if m := GetMetrics(); m != nil {
		m.RecordDelivery(ctx, method, provider, status, duration)
	}
}

// RecordDeliveryRetry 记录投递重试
func RecordDeliveryRetry(ctx context.Context, method, reason string) {
	if m := GetMetrics(); m != nil {
		m.RecordDeliveryRetry(ctx, method, reason)
	}
}

// RecordSnooze 记录贪睡
func RecordSnooze(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.RecordSnooze(ctx)
	}
}

// RecordCancel 记录取消
func RecordCancel(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.RecordCancel(ctx)
	}
}

// RecordWeatherLookup 记录天气查询，result 取 hit/miss/error
func RecordWeatherLookup(ctx context.Context, result string) {
	if m := GetMetrics(); m != nil {
		m.RecordWeatherLookup(ctx, result)
	}
}

// AddActiveDelivery 增加在途投递计数
func AddActiveDelivery(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.AddActiveDelivery(ctx)
	}
}

// SubtractActiveDelivery 减少在途投递计数
func SubtractActiveDelivery(ctx context.Context) {
	if m := GetMetrics(); m != nil {
		m.SubtractActiveDelivery(ctx)
	}
}
