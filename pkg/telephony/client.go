package telephony

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"DawnCall/config"
	"DawnCall/pkg/logger"
)

// SendResult 运营商受理结果
type SendResult struct {
	SID      string // 运营商侧唯一标识，回执用它定位投递
	Status   string // queued, ringing, sent...
	Provider string
}

// Client 电话触达客户端接口
type Client interface {
	// SendSMS 发送单条短信
	SendSMS(ctx context.Context, to, body string) (*SendResult, error)

	// MakeCall 发起外呼，twimlURL 返回通话脚本
	MakeCall(ctx context.Context, to, twimlURL string) (*SendResult, error)
}

var (
	telClient Client
	telOnce   sync.Once
	telErr    error
)

// Init 初始化电话客户端，demo 模式强制使用 recorder
func Init() error {
	telOnce.Do(func() {
		cfg := config.Cfg

		provider := cfg.TelephonyProvider
		if cfg.DemoMode {
			provider = "recorder"
		}

		switch provider {
		case "twilio":
			telClient, telErr = NewTwilioClient()
		case "aliyun":
			telClient, telErr = NewAliyunClient()
		case "recorder":
			telClient = NewRecorderClient()
		default:
			telErr = fmt.Errorf("unsupported telephony provider: %s", provider)
		}

		if telErr != nil {
			logger.Logger.Error("Failed to initialize telephony client", zap.Error(telErr))
			return
		}

		logger.Logger.Info("Telephony client initialized successfully",
			zap.String("provider", provider),
			zap.Bool("demo_mode", cfg.DemoMode),
		)
	})

	return telErr
}

func GetClient() Client {
	if telClient == nil {
		panic("telephony client not initialized, call telephony.Init() first")
	}
	return telClient
}

// SetClient 注入客户端，仅用于测试
func SetClient(c Client) {
	telClient = c
}

func SendSMS(ctx context.Context, to, body string) (*SendResult, error) {
	return GetClient().SendSMS(ctx, to, body)
}

func MakeCall(ctx context.Context, to, twimlURL string) (*SendResult, error) {
	return GetClient().MakeCall(ctx, to, twimlURL)
}
