package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"DawnCall/internal/model"
	"DawnCall/internal/model/dto"
	"DawnCall/pkg/logger"
	"DawnCall/storage/database"
)

var (
	webhookService *WebhookService
	webhookOnce    sync.Once
)

func Webhook() *WebhookService {
	webhookOnce.Do(func() {
		webhookService = &WebhookService{}
	})
	return webhookService
}

type WebhookService struct{}

// ProcessStatusCallback 处理运营商状态回执，按 provider SID 回写流水和执行记录。
// 回执可能乱序、重复，这里只做幂等的状态推进，查不到 SID 也静默成功
func (s *WebhookService) ProcessStatusCallback(ctx context.Context, req *dto.StatusCallbackRequest) error {
	sid := req.MessageSid
	status := req.MessageStatus
	if sid == "" {
		sid = req.CallSid
		status = req.CallStatus
	}
	if sid == "" || status == "" {
		logger.Logger.Warn("Status callback missing SID or status")
		return nil
	}

	logStatus, terminal := mapProviderStatus(status)

	updates := map[string]interface{}{}
	if logStatus != "" {
		updates["status"] = logStatus
	}
	if logStatus == model.NotificationLogStatusDelivered {
		updates["delivered_at"] = time.Now()
	}
	if req.ErrorCode != "" {
		updates["error_code"] = req.ErrorCode
	}
	if req.ErrorMessage != "" {
		updates["error_message"] = req.ErrorMessage
	}

	if len(updates) > 0 {
		err := database.DB().WithContext(ctx).
			Model(&model.NotificationLog{}).
			Where("provider_sid = ?", sid).
			Where("status <> ?", model.NotificationLogStatusDelivered).
			Updates(updates).Error
		if err != nil {
			logger.Logger.Error("Failed to update notification log from callback",
				zap.String("provider_sid", sid),
				zap.String("status", status),
				zap.Error(err),
			)
			return err
		}
	}

	// 执行记录只记录运营商侧的最终状态文本
	err := database.DB().WithContext(ctx).
		Model(&model.CallExecution{}).
		Where("provider_sid = ?", sid).
		Update("delivery_status", status).Error
	if err != nil {
		logger.Logger.Warn("Failed to update execution delivery status",
			zap.String("provider_sid", sid),
			zap.Error(err),
		)
	}

	logger.Logger.Info("Provider status callback processed",
		zap.String("provider_sid", sid),
		zap.String("status", status),
		zap.Bool("terminal", terminal),
	)

	return nil
}

// mapProviderStatus 把运营商状态归一到流水状态，非终态返回空
func mapProviderStatus(status string) (model.NotificationLogStatus, bool) {
	switch status {
	case "delivered", "completed":
		return model.NotificationLogStatusDelivered, true
	case "failed", "undelivered", "busy", "no-answer", "canceled":
		return model.NotificationLogStatusFailed, true
	default:
		// queued/sent/initiated/ringing/in-progress 等中间态不改流水
		return "", false
	}
}
