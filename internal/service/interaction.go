package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"DawnCall/config"
	"DawnCall/internal/model"
	"DawnCall/internal/model/dto"
	"DawnCall/internal/queue"
	"DawnCall/pkg/errors"
	"DawnCall/pkg/logger"
	"DawnCall/pkg/metrics"
	"DawnCall/pkg/telephony"
	"DawnCall/storage/database"
)

var (
	interactionService *InteractionService
	interactionOnce    sync.Once
)

func Interaction() *InteractionService {
	interactionOnce.Do(func() {
		interactionService = &InteractionService{}
	})
	return interactionService
}

type InteractionService struct{}

// InteractionAction IVR 决策结果
type InteractionAction int

const (
	ActionAcknowledge InteractionAction = iota
	ActionSnooze
	ActionCancel
	ActionReschedule
)

// DecideAction 根据按键或语音决定动作和回复文案
// 1 = 贪睡，2 = 取消后续，语音说 reschedule 引导去 App 改时间
func DecideAction(digits, speech string) (InteractionAction, string) {
	switch digits {
	case "1":
		return ActionSnooze, fmt.Sprintf("Snoozing for %d minutes. Sweet dreams!", config.Cfg.SnoozeMinutes)
	case "2":
		return ActionCancel, "All future wake-up calls have been cancelled."
	}

	if strings.Contains(strings.ToLower(speech), "reschedule") {
		return ActionReschedule, "To reschedule your wake-up calls, please visit the app. Have a great day!"
	}

	return ActionAcknowledge, "Thank you! Have a wonderful day!"
}

// BuildCallScript 生成某次执行的叫醒通话脚本，被叫接通后 Twilio 来取
func (s *InteractionService) BuildCallScript(ctx context.Context, executionID int64) (string, error) {
	execution, call, err := s.loadExecution(ctx, executionID)
	if err != nil {
		return "", err
	}

	var weatherLine string
	if call.IncludeWeather && call.ZipCode != "" {
		weatherLine = Delivery().weatherLine(ctx, call.ZipCode)
	}

	return telephony.BuildWakeupScript(telephony.WakeupScriptOptions{
		Snoozed:       execution.Snoozed,
		WeatherLine:   weatherLine,
		CustomMessage: call.Message,
		ActionURL:     fmt.Sprintf("%s/webhooks/interaction/%d", config.Cfg.PublicBaseURL, executionID),
	})
}

// HandleInteraction 处理 IVR 回调，返回给 Twilio 的应答脚本
func (s *InteractionService) HandleInteraction(ctx context.Context, executionID int64, req *dto.InteractionRequest) (string, error) {
	execution, call, err := s.loadExecution(ctx, executionID)
	if err != nil {
		return "", err
	}

	action, reply := DecideAction(req.Digits, req.SpeechResult)

	response := req.Digits
	if response == "" {
		response = req.SpeechResult
	}

	switch action {
	case ActionSnooze:
		if err := s.snooze(ctx, execution, call); err != nil {
			logger.Logger.Error("Failed to snooze wakeup call",
				zap.Int64("execution_id", executionID),
				zap.Error(err),
			)
			return "", err
		}
		response += fmt.Sprintf(" (snoozed for %d min)", config.Cfg.SnoozeMinutes)
		metrics.RecordSnooze(ctx)

	case ActionCancel:
		if err := s.cancelFuture(ctx, call); err != nil {
			logger.Logger.Error("Failed to cancel wakeup call from IVR",
				zap.Int64("call_id", call.ID),
				zap.Error(err),
			)
			return "", err
		}
		metrics.RecordCancel(ctx)
	}

	if response != "" {
		if execution.UserResponse != "" {
			response = execution.UserResponse + "; " + response
		}
		err := database.DB().WithContext(ctx).
			Model(&model.CallExecution{}).
			Where("id = ?", executionID).
			Update("user_response", response).Error
		if err != nil {
			logger.Logger.Warn("Failed to record user response",
				zap.Int64("execution_id", executionID),
				zap.Error(err),
			)
		}
	}

	logger.Logger.Info("IVR interaction handled",
		zap.Int64("execution_id", executionID),
		zap.Int64("call_id", call.ID),
		zap.String("digits", req.Digits),
		zap.String("speech", req.SpeechResult),
	)

	return telephony.BuildSayResponse(reply)
}

// snooze 创建贪睡执行记录并延迟重投
func (s *InteractionService) snooze(ctx context.Context, execution *model.CallExecution, call *model.WakeupCall) error {
	delay := time.Duration(config.Cfg.SnoozeMinutes) * time.Minute
	snoozeAt := time.Now().Add(delay)

	snoozeExecution := &model.CallExecution{
		WakeupCallID: call.ID,
		ScheduledAt:  snoozeAt,
		Status:       model.ExecutionStatusPending,
		Snoozed:      true,
	}
	if err := database.DB().WithContext(ctx).Create(snoozeExecution).Error; err != nil {
		return fmt.Errorf("failed to create snooze execution: %w", err)
	}

	msg := model.DeliveryMessage{
		ExecutionID:    snoozeExecution.ID,
		CallID:         call.ID,
		UserID:         call.UserID,
		ScheduledAt:    snoozeAt.Format(time.RFC3339),
		Phone:          call.Phone,
		ContactMethod:  string(call.ContactMethod),
		Message:        call.Message,
		IncludeWeather: call.IncludeWeather,
		ZipCode:        call.ZipCode,
		Timezone:       call.Timezone,
		Snoozed:        true,
		DelaySeconds:   int(delay.Seconds()),
	}

	if err := queue.PublishDelivery(msg); err != nil {
		return fmt.Errorf("failed to publish snooze delivery: %w", err)
	}

	logger.Logger.Info("Wakeup call snoozed",
		zap.Int64("call_id", call.ID),
		zap.Int64("snooze_execution_id", snoozeExecution.ID),
		zap.Time("snooze_at", snoozeAt),
	)

	return nil
}

// cancelFuture 被叫按 2，取消任务的所有后续触发
func (s *InteractionService) cancelFuture(ctx context.Context, call *model.WakeupCall) error {
	return database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.WakeupCall{}).
			Where("id = ?", call.ID).
			Updates(map[string]interface{}{
				"status":            model.CallStatusCancelled,
				"next_execution_at": nil,
			}).Error
		if err != nil {
			return err
		}

		return tx.Model(&model.CallExecution{}).
			Where("wakeup_call_id = ?", call.ID).
			Where("status = ?", model.ExecutionStatusPending).
			Update("status", model.ExecutionStatusCancelled).Error
	})
}

func (s *InteractionService) loadExecution(ctx context.Context, executionID int64) (*model.CallExecution, *model.WakeupCall, error) {
	var execution model.CallExecution
	err := database.DB().WithContext(ctx).
		Where("id = ?", executionID).
		First(&execution).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errors.ExecutionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load execution %d: %w", executionID, err)
	}

	var call model.WakeupCall
	err = database.DB().WithContext(ctx).
		Where("id = ?", execution.WakeupCallID).
		First(&call).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errors.CallNotFound
		}
		return nil, nil, fmt.Errorf("failed to load wakeup call %d: %w", execution.WakeupCallID, err)
	}

	return &execution, &call, nil
}
