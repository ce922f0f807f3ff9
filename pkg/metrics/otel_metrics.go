package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 投递相关指标
	DeliveryTotal       metric.Int64Counter
	DeliveryDuration    metric.Float64Histogram
	DeliveryRetryTotal  metric.Int64Counter
	SnoozeTotal         metric.Int64Counter
	CancelTotal         metric.Int64Counter
	WeatherLookupTotal  metric.Int64Counter
	ActiveDeliveries    metric.Int64UpDownCounter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("dawncall")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	metrics = &OTelMetrics{}

	metrics.DeliveryTotal, err = meter.Int64Counter(
		"delivery_total",
		metric.WithDescription("Total number of wake-up deliveries attempted"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return err
	}

	metrics.DeliveryDuration, err = meter.Float64Histogram(
		"delivery_duration_seconds",
		metric.WithDescription("Time spent executing a wake-up delivery in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics.DeliveryRetryTotal, err = meter.Int64Counter(
		"delivery_retry_total",
		metric.WithDescription("Total number of delivery retry attempts"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return err
	}

	metrics.SnoozeTotal, err = meter.Int64Counter(
		"snooze_total",
		metric.WithDescription("Total number of snooze requests from call recipients"),
		metric.WithUnit("{snooze}"),
	)
	if err != nil {
		return err
	}

	metrics.CancelTotal, err = meter.Int64Counter(
		"cancel_total",
		metric.WithDescription("Total number of cancellations from call recipients"),
		metric.WithUnit("{cancel}"),
	)
	if err != nil {
		return err
	}

	metrics.WeatherLookupTotal, err = meter.Int64Counter(
		"weather_lookup_total",
		metric.WithDescription("Total number of weather lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return err
	}

	metrics.ActiveDeliveries, err = meter.Int64UpDownCounter(
		"active_deliveries",
		metric.WithDescription("Number of deliveries currently in flight"),
		metric.WithUnit("{delivery}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GetMetrics 获取全局指标实例
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordDelivery 记录一次投递结果
func (m *OTelMetrics) RecordDelivery(ctx context.Context, method, provider, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("provider", provider),
		attribute.String("status", status),
	}

	m.DeliveryTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.DeliveryDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("provider", provider),
	))
}

// RecordDeliveryRetry 记录投递重试
func (m *OTelMetrics) RecordDeliveryRetry(ctx context.Context, method, reason string) {
	m.DeliveryRetryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("retry_reason", reason),
	))
}

// RecordSnooze 记录贪睡
func (m *OTelMetrics) RecordSnooze(ctx context.Context) {
	m.SnoozeTotal.Add(ctx, 1)
}

// RecordCancel 记录取消
func (m *OTelMetrics) RecordCancel(ctx context.Context) {
	m.CancelTotal.Add(ctx, 1)
}

// RecordWeatherLookup 记录天气查询，result 取 hit/miss/error
func (m *OTelMetrics) RecordWeatherLookup(ctx context.Context, result string) {
	m.WeatherLookupTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

// AddActiveDelivery 增加在途投递计数
func (m *OTelMetrics) AddActiveDelivery(ctx context.Context) {
	m.ActiveDeliveries.Add(ctx, 1)
}

// SubtractActiveDelivery 减少在途投递计数
func (m *OTelMetrics) SubtractActiveDelivery(ctx context.Context) {
	m.ActiveDeliveries.Add(ctx, -1)
}
