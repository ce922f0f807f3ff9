package cache

import (
	"context"

	"DawnCall/pkg/weather"
)

// 天气播报按邮编缓存一小时，同一邮编的多个任务共享一次查询

// GetWeatherReport 读取缓存的天气，第二个返回值表示是否命中
func GetWeatherReport(ctx context.Context, zipCode string) (*weather.Report, bool, error) {
	var report weather.Report
	hit, err := WeatherProtectedCache.Get(ctx, zipCode, &report)
	if err != nil || !hit {
		return nil, false, err
	}
	if report.ZipCode == "" {
		// 空值命中，近期查询过但没有结果
		return nil, true, nil
	}
	return &report, true, nil
}

// SetWeatherReport 写入天气缓存，report 为 nil 时写空值标记防穿透
func SetWeatherReport(ctx context.Context, zipCode string, report *weather.Report) error {
	if report == nil {
		return WeatherProtectedCache.Set(ctx, zipCode, nil)
	}
	return WeatherProtectedCache.Set(ctx, zipCode, report)
}
