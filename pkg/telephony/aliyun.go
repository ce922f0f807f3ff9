package telephony

import (
	"context"
	"encoding/json"
	"fmt"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	openapiutil "github.com/alibabacloud-go/openapi-util/service"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	credential "github.com/aliyun/credentials-go/credentials"
	"go.uber.org/zap"

	"DawnCall/config"
	"DawnCall/pkg/logger"
)

// AliyunClient 阿里云短信客户端，只支持 SMS 渠道
type AliyunClient struct {
	client       *openapi.Client
	signName     string
	templateCode string
}

// NewAliyunClient 创建阿里云客户端
// 使用环境变量自动获取 AccessKey 和 SecretKey
// 需要设置环境变量：ALIBABA_CLOUD_ACCESS_KEY_ID 和 ALIBABA_CLOUD_ACCESS_KEY_SECRET
func NewAliyunClient() (*AliyunClient, error) {
	cred, err := credential.NewCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun credential: %w", err)
	}

	openapiConfig := &openapi.Config{
		Credential: cred,
		Endpoint:   tea.String("dysmsapi.aliyuncs.com"),
	}

	client, err := openapi.NewClient(openapiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create aliyun client: %w", err)
	}

	return &AliyunClient{
		client:       client,
		signName:     config.Cfg.SMSSignName,
		templateCode: config.Cfg.SMSTemplateCode,
	}, nil
}

func (c *AliyunClient) createApiInfo(action string) *openapi.Params {
	return &openapi.Params{
		Action:      tea.String(action),
		Version:     tea.String("2017-05-25"),
		Protocol:    tea.String("HTTPS"),
		Method:      tea.String("POST"),
		AuthType:    tea.String("AK"),
		Style:       tea.String("RPC"),
		Pathname:    tea.String("/"),
		ReqBodyType: tea.String("json"),
		BodyType:    tea.String("json"),
	}
}

// SendSMS 发送单条短信，消息正文作为模板参数传入
func (c *AliyunClient) SendSMS(ctx context.Context, to, body string) (*SendResult, error) {
	if c.signName == "" {
		return nil, fmt.Errorf("SMS_SIGN_NAME is required")
	}
	if c.templateCode == "" {
		return nil, fmt.Errorf("SMS_TEMPLATE_CODE is required")
	}

	templateParam, err := json.Marshal(map[string]string{"content": body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template param: %w", err)
	}

	params := c.createApiInfo("SendSms")

	queries := map[string]interface{}{
		"PhoneNumbers":  tea.String(to),
		"SignName":      tea.String(c.signName),
		"TemplateCode":  tea.String(c.templateCode),
		"TemplateParam": tea.String(string(templateParam)),
	}

	runtime := &util.RuntimeOptions{}
	request := &openapi.OpenApiRequest{
		Query: openapiutil.Query(queries),
	}

	resp, err := c.client.CallApi(params, request, runtime)
	if err != nil {
		logger.Logger.Error("Failed to send SMS via aliyun",
			zap.String("template", c.templateCode),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send SMS: %w", err)
	}

	if resp["statusCode"] != nil {
		statusCode := resp["statusCode"].(int)
		if statusCode != 200 {
			logger.Logger.Error("SMS API returned error",
				zap.Int("statusCode", statusCode),
				zap.Any("body", resp["body"]),
			)
			return nil, fmt.Errorf("SMS API error: statusCode=%d", statusCode)
		}
	}

	bizID := ""
	if resp["body"] != nil {
		bodyBytes, _ := json.Marshal(resp["body"])
		var bodyMap map[string]interface{}
		if err := json.Unmarshal(bodyBytes, &bodyMap); err == nil {
			if code, ok := bodyMap["Code"].(string); ok && code != "OK" {
				message := ""
				if msg, ok := bodyMap["Message"].(string); ok {
					message = msg
				}
				logger.Logger.Error("SMS send failed",
					zap.String("code", code),
					zap.String("message", message),
				)
				return nil, fmt.Errorf("SMS send failed: %s - %s", code, message)
			}
			if id, ok := bodyMap["BizId"].(string); ok {
				bizID = id
			}
		}
	}

	logger.Logger.Info("SMS sent successfully via aliyun",
		zap.String("biz_id", bizID),
	)

	return &SendResult{SID: bizID, Status: "sent", Provider: "aliyun"}, nil
}

// MakeCall 阿里云渠道不支持外呼脚本，调用方应回退到 SMS
func (c *AliyunClient) MakeCall(ctx context.Context, to, twimlURL string) (*SendResult, error) {
	return nil, fmt.Errorf("aliyun provider does not support voice calls")
}
