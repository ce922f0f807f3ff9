package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"DawnCall/config"
	"DawnCall/internal/cache"
	"DawnCall/internal/model"
	"DawnCall/internal/queue"
	"DawnCall/pkg/errors"
	"DawnCall/pkg/logger"
	"DawnCall/pkg/metrics"
	"DawnCall/pkg/telephony"
	"DawnCall/pkg/weather"
	"DawnCall/storage/database"
)

var (
	deliveryService *DeliveryService
	deliveryOnce    sync.Once
)

func Delivery() *DeliveryService {
	deliveryOnce.Do(func() {
		deliveryService = &DeliveryService{
			weatherClient: weather.NewClient(),
		}
	})
	return deliveryService
}

type DeliveryService struct {
	weatherClient *weather.Client
}

// Deliver 执行一次叫醒投递。消息携带的是扫描时的快照，
// 投递前重新核对任务和执行记录的状态，取消和暂停的不再打扰
func (s *DeliveryService) Deliver(ctx context.Context, msg model.DeliveryMessage) error {
	var execution model.CallExecution
	err := database.DB().WithContext(ctx).
		Where("id = ?", msg.ExecutionID).
		First(&execution).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.SkipMessageError("execution not found")
		}
		return fmt.Errorf("failed to load execution %d: %w", msg.ExecutionID, err)
	}

	switch execution.Status {
	case model.ExecutionStatusCompleted:
		return errors.SkipMessageError("execution already completed")
	case model.ExecutionStatusCancelled:
		return errors.SkipMessageError("execution cancelled")
	}

	var call model.WakeupCall
	err = database.DB().WithContext(ctx).
		Where("id = ?", msg.CallID).
		First(&call).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.SkipMessageError("wakeup call not found")
		}
		return fmt.Errorf("failed to load wakeup call %d: %w", msg.CallID, err)
	}

	if call.Status == model.CallStatusCancelled || call.Status == model.CallStatusPaused {
		s.markExecution(ctx, execution.ID, map[string]interface{}{
			"status": model.ExecutionStatusCancelled,
		})
		return errors.SkipMessageError(fmt.Sprintf("wakeup call is %s", call.Status))
	}

	// 试用账号只能打给已验证的号码，这条规则在本地也兜一层，
	// 免得白白消耗一次供应商调用。演示模式不真实外呼，不受限制
	if !config.Cfg.DemoMode && !s.destinationVerified(ctx, msg) {
		s.markExecution(ctx, execution.ID, map[string]interface{}{
			"status":        model.ExecutionStatusFailed,
			"completed_at":  time.Now(),
			"error_message": "destination phone not verified",
		})
		logger.Logger.Warn("Delivery refused: destination not verified",
			zap.Int64("execution_id", execution.ID),
			zap.Int64("call_id", call.ID),
		)
		return errors.SkipMessageError("destination phone not verified")
	}

	now := time.Now()
	s.markExecution(ctx, execution.ID, map[string]interface{}{
		"status":     model.ExecutionStatusInProgress,
		"started_at": now,
	})

	var weatherLine string
	if msg.IncludeWeather && msg.ZipCode != "" {
		weatherLine = s.weatherLine(ctx, msg.ZipCode)
	}

	metrics.AddActiveDelivery(ctx)
	start := time.Now()
	result, channel, deliverErr := s.attemptDelivery(ctx, &execution, msg, weatherLine)
	duration := time.Since(start).Seconds()
	metrics.SubtractActiveDelivery(ctx)

	if deliverErr != nil {
		metrics.RecordDelivery(ctx, channel, config.Cfg.TelephonyProvider, "failed", duration)
		return s.handleFailure(ctx, &execution, msg, deliverErr)
	}
	metrics.RecordDelivery(ctx, channel, result.Provider, "success", duration)

	updates := map[string]interface{}{
		"status":          model.ExecutionStatusCompleted,
		"completed_at":    time.Now(),
		"provider_sid":    result.SID,
		"delivery_status": result.Status,
	}
	s.markExecution(ctx, execution.ID, updates)

	// 单次任务投递成功即收尾
	if call.Frequency == model.FrequencyOnce {
		err := database.DB().WithContext(ctx).
			Model(&model.WakeupCall{}).
			Where("id = ?", call.ID).
			Where("status = ?", model.CallStatusActive).
			Update("status", model.CallStatusCompleted).Error
		if err != nil {
			logger.Logger.Warn("Failed to complete one-shot wakeup call",
				zap.Int64("call_id", call.ID),
				zap.Error(err),
			)
		}
	}

	logger.Logger.Info("Wakeup delivery completed",
		zap.Int64("execution_id", execution.ID),
		zap.Int64("call_id", call.ID),
		zap.String("channel", channel),
		zap.String("provider_sid", result.SID),
		zap.Bool("snoozed", msg.Snoozed),
	)

	return nil
}

// attemptDelivery 按触达方式投递，语音失败时降级为短信
func (s *DeliveryService) attemptDelivery(
	ctx context.Context,
	execution *model.CallExecution,
	msg model.DeliveryMessage,
	weatherLine string,
) (*telephony.SendResult, string, error) {
	smsBody := s.buildSMSBody(msg, weatherLine)

	switch model.ContactMethod(msg.ContactMethod) {
	case model.ContactMethodSMS:
		result, err := s.sendSMS(ctx, execution, msg, smsBody)
		return result, "sms", err

	case model.ContactMethodCall:
		result, err := s.makeCall(ctx, execution, msg)
		if err == nil {
			return result, "voice", nil
		}
		logger.Logger.Warn("Voice delivery failed, falling back to SMS",
			zap.Int64("execution_id", execution.ID),
			zap.Error(err),
		)
		result, smsErr := s.sendSMS(ctx, execution, msg, smsBody)
		if smsErr != nil {
			return nil, "voice", fmt.Errorf("voice failed (%v), sms fallback failed: %w", err, smsErr)
		}
		return result, "sms_fallback", nil

	case model.ContactMethodBoth:
		callResult, callErr := s.makeCall(ctx, execution, msg)
		smsResult, smsErr := s.sendSMS(ctx, execution, msg, smsBody)
		if callErr != nil && smsErr != nil {
			return nil, "both", fmt.Errorf("voice failed (%v), sms failed: %w", callErr, smsErr)
		}
		if callErr == nil {
			return callResult, "both", nil
		}
		return smsResult, "both", nil

	default:
		return nil, "", errors.SkipMessageError("unknown contact method " + msg.ContactMethod)
	}
}

func (s *DeliveryService) makeCall(ctx context.Context, execution *model.CallExecution, msg model.DeliveryMessage) (*telephony.SendResult, error) {
	twimlURL := fmt.Sprintf("%s/webhooks/twiml/%d", config.Cfg.PublicBaseURL, execution.ID)

	result, err := telephony.MakeCall(ctx, msg.Phone, twimlURL)
	s.logNotification(ctx, execution, msg, model.NotificationChannelVoice, twimlURL, result, err)
	return result, err
}

func (s *DeliveryService) sendSMS(ctx context.Context, execution *model.CallExecution, msg model.DeliveryMessage, body string) (*telephony.SendResult, error) {
	result, err := telephony.SendSMS(ctx, msg.Phone, body)
	s.logNotification(ctx, execution, msg, model.NotificationChannelSMS, body, result, err)
	return result, err
}

// logNotification 记录触达流水，投递失败也留痕
func (s *DeliveryService) logNotification(
	ctx context.Context,
	execution *model.CallExecution,
	msg model.DeliveryMessage,
	channel model.NotificationChannel,
	body string,
	result *telephony.SendResult,
	deliverErr error,
) {
	log := &model.NotificationLog{
		UserID:       msg.UserID,
		ExecutionID:  execution.ID,
		WakeupCallID: msg.CallID,
		Channel:      channel,
		Recipient:    msg.Phone,
		Body:         body,
		Status:       model.NotificationLogStatusQueued,
		SentAt:       time.Now(),
	}

	if result != nil {
		log.Provider = result.Provider
		log.ProviderSID = result.SID
	}
	if deliverErr != nil {
		log.Status = model.NotificationLogStatusFailed
		log.ErrorMessage = deliverErr.Error()
	}

	if err := database.DB().WithContext(ctx).Create(log).Error; err != nil {
		logger.Logger.Warn("Failed to create notification log",
			zap.Int64("execution_id", execution.ID),
			zap.Error(err),
		)
	}
}

// handleFailure 失败重试：在次数内延迟重投，超限标记失败
func (s *DeliveryService) handleFailure(ctx context.Context, execution *model.CallExecution, msg model.DeliveryMessage, deliverErr error) error {
	if errors.IsSkipMessageError(deliverErr) {
		return deliverErr
	}

	retryCount := execution.RetryCount + 1
	maxAttempts := config.Cfg.MaxDeliveryAttempts

	if retryCount >= maxAttempts {
		s.markExecution(ctx, execution.ID, map[string]interface{}{
			"status":        model.ExecutionStatusFailed,
			"completed_at":  time.Now(),
			"retry_count":   retryCount,
			"error_message": deliverErr.Error(),
		})
		logger.Logger.Error("Wakeup delivery failed permanently",
			zap.Int64("execution_id", execution.ID),
			zap.Int("retry_count", retryCount),
			zap.Error(deliverErr),
		)
		return errors.SkipMessageError("delivery attempts exhausted")
	}

	s.markExecution(ctx, execution.ID, map[string]interface{}{
		"status":        model.ExecutionStatusPending,
		"retry_count":   retryCount,
		"error_message": deliverErr.Error(),
	})

	retryMsg := msg
	retryMsg.MessageID = "" // 重投需要新的消息 ID，避免撞上幂等标记
	retryMsg.DelaySeconds = config.Cfg.RetryBackoffSeconds

	if err := queue.PublishDelivery(retryMsg); err != nil {
		return fmt.Errorf("delivery failed (%v) and retry publish failed: %w", deliverErr, err)
	}
	metrics.RecordDeliveryRetry(ctx, msg.ContactMethod, "provider_error")

	logger.Logger.Warn("Wakeup delivery failed, retry scheduled",
		zap.Int64("execution_id", execution.ID),
		zap.Int("retry_count", retryCount),
		zap.Int("backoff_seconds", config.Cfg.RetryBackoffSeconds),
		zap.Error(deliverErr),
	)

	// 重试消息已入队，当前这条按跳过处理
	return errors.SkipMessageError("retry scheduled")
}

// destinationVerified 判断目标号码是否通过验证：
// 号码是用户本人已验证的手机号，或者单独走过一次验证码流程
func (s *DeliveryService) destinationVerified(ctx context.Context, msg model.DeliveryMessage) bool {
	var user model.User
	err := database.DB().WithContext(ctx).
		Where("id = ?", msg.UserID).
		First(&user).Error
	if err == nil && user.PhoneVerified && user.Phone == msg.Phone {
		return true
	}

	var count int64
	err = database.DB().WithContext(ctx).
		Model(&model.PhoneVerification{}).
		Where("phone = ?", msg.Phone).
		Where("verified_at IS NOT NULL").
		Count(&count).Error
	if err != nil {
		logger.Logger.Warn("Failed to check phone verification",
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
		return false
	}
	return count > 0
}

// weatherLine 生成天气播报，拿不到就静默跳过，不阻塞叫醒
func (s *DeliveryService) weatherLine(ctx context.Context, zipCode string) string {
	report, hit, err := cache.GetWeatherReport(ctx, zipCode)
	if err != nil {
		logger.Logger.Warn("Weather cache lookup failed",
			zap.String("zip_code", zipCode),
			zap.Error(err),
		)
	}
	if hit {
		metrics.RecordWeatherLookup(ctx, "hit")
		if report == nil {
			return ""
		}
		return report.Announcement()
	}

	result, err := cache.WeatherBreaker.CallWithResult(ctx, func() (interface{}, error) {
		return s.weatherClient.Current(ctx, zipCode)
	})
	if err != nil {
		logger.Logger.Warn("Weather lookup failed, skipping weather line",
			zap.String("zip_code", zipCode),
			zap.Error(err),
		)
		metrics.RecordWeatherLookup(ctx, "error")
		cache.SetWeatherReport(ctx, zipCode, nil)
		return ""
	}
	metrics.RecordWeatherLookup(ctx, "miss")

	report = result.(*weather.Report)
	if err := cache.SetWeatherReport(ctx, zipCode, report); err != nil {
		logger.Logger.Warn("Failed to cache weather report",
			zap.String("zip_code", zipCode),
			zap.Error(err),
		)
	}

	return report.Announcement()
}

// buildSMSBody 拼接短信文案：问候语 + 天气 + 自定义消息
func (s *DeliveryService) buildSMSBody(msg model.DeliveryMessage, weatherLine string) string {
	greeting := "Good morning! This is your wake-up call. It's time to start your day!"
	if msg.Snoozed {
		greeting = "Rise and shine! This is your snoozed wake-up call. Time to get up!"
	}

	body := greeting
	if weatherLine != "" {
		body += " " + weatherLine
	}
	if msg.Message != "" {
		body += " " + msg.Message
	}
	return body
}

func (s *DeliveryService) markExecution(ctx context.Context, executionID int64, updates map[string]interface{}) {
	err := database.DB().WithContext(ctx).
		Model(&model.CallExecution{}).
		Where("id = ?", executionID).
		Updates(updates).Error
	if err != nil {
		logger.Logger.Warn("Failed to update execution",
			zap.Int64("execution_id", executionID),
			zap.Error(err),
		)
	}
}
