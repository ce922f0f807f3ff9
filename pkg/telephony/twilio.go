package telephony

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"DawnCall/config"
	"DawnCall/pkg/logger"
)

// TwilioClient 基于 Twilio REST API 的触达客户端
type TwilioClient struct {
	http       *resty.Client
	accountSID string
	fromNumber string
}

type twilioResponse struct {
	Sid     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewTwilioClient() (*TwilioClient, error) {
	cfg := config.Cfg

	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		return nil, fmt.Errorf("twilio credentials are not configured")
	}
	if cfg.TwilioPhoneNumber == "" {
		return nil, fmt.Errorf("TWILIO_PHONE_NUMBER is required")
	}

	http := resty.New().
		SetBaseURL(cfg.TwilioBaseURL).
		SetBasicAuth(cfg.TwilioAccountSID, cfg.TwilioAuthToken).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &TwilioClient{
		http:       http,
		accountSID: cfg.TwilioAccountSID,
		fromNumber: cfg.TwilioPhoneNumber,
	}, nil
}

// SendSMS 发送单条短信
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) (*SendResult, error) {
	var out twilioResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":             to,
			"From":           c.fromNumber,
			"Body":           body,
			"StatusCallback": config.Cfg.PublicBaseURL + "/webhooks/status",
		}).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", c.accountSID))

	if err != nil {
		logger.Logger.Error("Failed to send SMS via Twilio",
			zap.String("to", to),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send SMS: %w", err)
	}

	if resp.IsError() {
		logger.Logger.Error("Twilio SMS API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.Int("twilio_code", out.Code),
			zap.String("message", out.Message),
		)
		return nil, fmt.Errorf("twilio SMS error: %d %s", out.Code, out.Message)
	}

	logger.Logger.Info("SMS accepted by Twilio",
		zap.String("sid", out.Sid),
		zap.String("status", out.Status),
	)

	return &SendResult{SID: out.Sid, Status: out.Status, Provider: "twilio"}, nil
}

// MakeCall 发起外呼，Twilio 会回调 twimlURL 获取通话脚本
func (c *TwilioClient) MakeCall(ctx context.Context, to, twimlURL string) (*SendResult, error) {
	var out twilioResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":             to,
			"From":           c.fromNumber,
			"Url":            twimlURL,
			"StatusCallback": config.Cfg.PublicBaseURL + "/webhooks/status",
		}).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Calls.json", c.accountSID))

	if err != nil {
		logger.Logger.Error("Failed to start call via Twilio",
			zap.String("to", to),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to start call: %w", err)
	}

	if resp.IsError() {
		logger.Logger.Error("Twilio Calls API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.Int("twilio_code", out.Code),
			zap.String("message", out.Message),
		)
		return nil, fmt.Errorf("twilio call error: %d %s", out.Code, out.Message)
	}

	logger.Logger.Info("Call accepted by Twilio",
		zap.String("sid", out.Sid),
		zap.String("status", out.Status),
	)

	return &SendResult{SID: out.Sid, Status: out.Status, Provider: "twilio"}, nil
}
