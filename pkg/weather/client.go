package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"DawnCall/config"
	"DawnCall/pkg/logger"
)

// Report 叫醒播报需要的天气条目
type Report struct {
	Condition string  `json:"condition"`
	TempF     float64 `json:"temp_f"`
	ZipCode   string  `json:"zip_code"`
}

// Announcement 生成通话里的播报文案
func (r *Report) Announcement() string {
	return fmt.Sprintf("The current weather is %s with a temperature of %.0f degrees Fahrenheit.", r.Condition, r.TempF)
}

type apiResponse struct {
	Current struct {
		TempF     float64 `json:"temp_f"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client weatherapi.com 客户端
type Client struct {
	http   *resty.Client
	apiKey string
}

func NewClient() *Client {
	cfg := config.Cfg

	http := resty.New().
		SetBaseURL(cfg.WeatherBaseURL).
		SetTimeout(10 * time.Second)

	return &Client{
		http:   http,
		apiKey: cfg.WeatherAPIKey,
	}
}

// NewClientWith 指定地址和密钥，测试用
func NewClientWith(baseURL, apiKey string) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second),
		apiKey: apiKey,
	}
}

// Current 查询邮编对应的实时天气
func (c *Client) Current(ctx context.Context, zipCode string) (*Report, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("weather API key is not configured")
	}

	var out apiResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key": c.apiKey,
			"q":   zipCode + ",US",
			"aqi": "no",
		}).
		SetResult(&out).
		SetError(&out).
		Get("/current.json")

	if err != nil {
		logger.Logger.Error("Failed to fetch weather",
			zap.String("zip_code", zipCode),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to fetch weather: %w", err)
	}

	if resp.IsError() {
		logger.Logger.Error("Weather API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.Int("api_code", out.Error.Code),
			zap.String("message", out.Error.Message),
		)
		return nil, fmt.Errorf("weather API error: %d %s", out.Error.Code, out.Error.Message)
	}

	return &Report{
		Condition: out.Current.Condition.Text,
		TempF:     out.Current.TempF,
		ZipCode:   zipCode,
	}, nil
}
