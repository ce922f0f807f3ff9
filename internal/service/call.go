package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"DawnCall/internal/model"
	"DawnCall/internal/model/dto"
	"DawnCall/internal/queue"
	"DawnCall/internal/schedule"
	"DawnCall/pkg/errors"
	"DawnCall/pkg/logger"
	"DawnCall/storage/database"
	"DawnCall/utils"
)

var (
	callService *CallService
	callOnce    sync.Once
)

func Call() *CallService {
	callOnce.Do(func() {
		callService = &CallService{}
	})
	return callService
}

type CallService struct{}

// CreateCall 创建叫醒任务并计算首次触发时间
func (s *CallService) CreateCall(ctx context.Context, userID int64, req *dto.CreateCallRequest) (*dto.CallData, error) {
	if !utils.ValidatePhone(req.Phone) {
		return nil, errors.InvalidPhoneNumber
	}
	if _, _, err := utils.ParseTimeOfDay(req.WakeupTime); err != nil {
		return nil, errors.InvalidTimeFormat
	}
	if !model.ValidFrequency(model.Frequency(req.Frequency)) {
		return nil, errors.InvalidFrequency
	}
	if !model.ValidContactMethod(model.ContactMethod(req.ContactMethod)) {
		return nil, errors.InvalidContactMethod
	}
	if req.ZipCode != "" && !utils.ValidateZipCode(req.ZipCode) {
		return nil, errors.InvalidZipCode
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "America/New_York"
	}
	if !utils.ValidateTimezone(timezone) {
		return nil, errors.InvalidTimezone
	}

	call := &model.WakeupCall{
		UserID:         userID,
		Phone:          utils.NormalizePhone(req.Phone),
		Timezone:       timezone,
		WakeupTime:     req.WakeupTime,
		Frequency:      model.Frequency(req.Frequency),
		Status:         model.CallStatusActive,
		Monday:         req.Monday,
		Tuesday:        req.Tuesday,
		Wednesday:      req.Wednesday,
		Thursday:       req.Thursday,
		Friday:         req.Friday,
		Saturday:       req.Saturday,
		Sunday:         req.Sunday,
		ContactMethod:  model.ContactMethod(req.ContactMethod),
		Message:        req.Message,
		IncludeWeather: req.IncludeWeather,
		ZipCode:        req.ZipCode,
	}

	if call.Frequency == model.FrequencyCustom && !call.HasCustomDay() {
		return nil, errors.CustomDaysRequired
	}

	call.CreatedAt = time.Now()
	next, err := schedule.NextRun(call, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute first run: %w", err)
	}
	call.NextExecutionAt = &next

	if err := database.DB().WithContext(ctx).Create(call).Error; err != nil {
		return nil, fmt.Errorf("failed to create wakeup call: %w", err)
	}

	logger.Logger.Info("Wakeup call created",
		zap.Int64("call_id", call.ID),
		zap.Int64("user_id", userID),
		zap.String("wakeup_time", call.WakeupTime),
		zap.String("frequency", string(call.Frequency)),
		zap.Time("next_execution_at", next),
	)

	return toCallData(call), nil
}

// GetCall 查询单个叫醒任务，校验归属
func (s *CallService) GetCall(ctx context.Context, userID, callID int64) (*dto.CallData, error) {
	call, err := s.findOwnedCall(ctx, userID, callID)
	if err != nil {
		return nil, err
	}
	return toCallData(call), nil
}

// ListCalls 查询当前用户的叫醒任务列表
func (s *CallService) ListCalls(ctx context.Context, userID int64, query *dto.ListCallsQuery) ([]*dto.CallData, int64, error) {
	db := database.DB().WithContext(ctx).
		Model(&model.WakeupCall{}).
		Where("user_id = ?", userID)

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wakeup calls: %w", err)
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var calls []*model.WakeupCall
	err := db.Order("created_at DESC").
		Limit(limit).
		Offset(query.Offset).
		Find(&calls).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wakeup calls: %w", err)
	}

	result := make([]*dto.CallData, len(calls))
	for i, call := range calls {
		result[i] = toCallData(call)
	}
	return result, total, nil
}

// UpdateCall 更新叫醒任务，调度相关字段变更后重算下次触发
func (s *CallService) UpdateCall(ctx context.Context, userID, callID int64, req *dto.UpdateCallRequest) (*dto.CallData, error) {
	call, err := s.findOwnedCall(ctx, userID, callID)
	if err != nil {
		return nil, err
	}

	rescheduleNeeded := false

	if req.Phone != nil {
		if !utils.ValidatePhone(*req.Phone) {
			return nil, errors.InvalidPhoneNumber
		}
		call.Phone = utils.NormalizePhone(*req.Phone)
	}
	if req.WakeupTime != nil {
		if _, _, err := utils.ParseTimeOfDay(*req.WakeupTime); err != nil {
			return nil, errors.InvalidTimeFormat
		}
		call.WakeupTime = *req.WakeupTime
		rescheduleNeeded = true
	}
	if req.Timezone != nil {
		if !utils.ValidateTimezone(*req.Timezone) {
			return nil, errors.InvalidTimezone
		}
		call.Timezone = *req.Timezone
		rescheduleNeeded = true
	}
	if req.Frequency != nil {
		if !model.ValidFrequency(model.Frequency(*req.Frequency)) {
			return nil, errors.InvalidFrequency
		}
		call.Frequency = model.Frequency(*req.Frequency)
		rescheduleNeeded = true
	}
	if req.ContactMethod != nil {
		if !model.ValidContactMethod(model.ContactMethod(*req.ContactMethod)) {
			return nil, errors.InvalidContactMethod
		}
		call.ContactMethod = model.ContactMethod(*req.ContactMethod)
	}
	if req.Message != nil {
		call.Message = *req.Message
	}
	if req.IncludeWeather != nil {
		call.IncludeWeather = *req.IncludeWeather
	}
	if req.ZipCode != nil {
		if *req.ZipCode != "" && !utils.ValidateZipCode(*req.ZipCode) {
			return nil, errors.InvalidZipCode
		}
		call.ZipCode = *req.ZipCode
	}

	for day, value := range map[*bool]*bool{
		&call.Monday:    req.Monday,
		&call.Tuesday:   req.Tuesday,
		&call.Wednesday: req.Wednesday,
		&call.Thursday:  req.Thursday,
		&call.Friday:    req.Friday,
		&call.Saturday:  req.Saturday,
		&call.Sunday:    req.Sunday,
	} {
		if value != nil {
			*day = *value
			rescheduleNeeded = true
		}
	}

	if call.Frequency == model.FrequencyCustom && !call.HasCustomDay() {
		return nil, errors.CustomDaysRequired
	}

	if rescheduleNeeded && call.Status == model.CallStatusActive {
		next, err := schedule.NextRun(call, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to compute next run: %w", err)
		}
		call.NextExecutionAt = &next
	}

	if err := database.DB().WithContext(ctx).Save(call).Error; err != nil {
		return nil, fmt.Errorf("failed to update wakeup call: %w", err)
	}

	logger.Logger.Info("Wakeup call updated",
		zap.Int64("call_id", call.ID),
		zap.Int64("user_id", userID),
		zap.Bool("rescheduled", rescheduleNeeded),
	)

	return toCallData(call), nil
}

// PauseCall 暂停任务，清空下次触发时间让 dispatcher 不再扫到
func (s *CallService) PauseCall(ctx context.Context, userID, callID int64) (*dto.CallData, error) {
	call, err := s.findOwnedCall(ctx, userID, callID)
	if err != nil {
		return nil, err
	}
	if call.Status != model.CallStatusActive {
		return nil, errors.CallNotActive
	}

	err = database.DB().WithContext(ctx).
		Model(call).
		Updates(map[string]interface{}{
			"status":            model.CallStatusPaused,
			"next_execution_at": nil,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to pause wakeup call: %w", err)
	}

	call.Status = model.CallStatusPaused
	call.NextExecutionAt = nil
	return toCallData(call), nil
}

// ResumeCall 恢复任务并重算下次触发时间
func (s *CallService) ResumeCall(ctx context.Context, userID, callID int64) (*dto.CallData, error) {
	call, err := s.findOwnedCall(ctx, userID, callID)
	if err != nil {
		return nil, err
	}
	if call.Status != model.CallStatusPaused {
		return nil, errors.CallNotActive
	}

	next, err := schedule.NextRun(call, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute next run: %w", err)
	}

	err = database.DB().WithContext(ctx).
		Model(call).
		Updates(map[string]interface{}{
			"status":            model.CallStatusActive,
			"next_execution_at": next,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resume wakeup call: %w", err)
	}

	call.Status = model.CallStatusActive
	call.NextExecutionAt = &next
	return toCallData(call), nil
}

// CancelCall 取消任务，同时取消还未投递的执行记录
func (s *CallService) CancelCall(ctx context.Context, userID, callID int64) (*dto.CallData, error) {
	call, err := s.findOwnedCall(ctx, userID, callID)
	if err != nil {
		return nil, err
	}
	if call.Status == model.CallStatusCancelled {
		return toCallData(call), nil
	}

	err = database.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(call).
			Updates(map[string]interface{}{
				"status":            model.CallStatusCancelled,
				"next_execution_at": nil,
			}).Error; err != nil {
			return err
		}

		return tx.Model(&model.CallExecution{}).
			Where("wakeup_call_id = ?", call.ID).
			Where("status = ?", model.ExecutionStatusPending).
			Update("status", model.ExecutionStatusCancelled).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel wakeup call: %w", err)
	}

	logger.Logger.Info("Wakeup call cancelled",
		zap.Int64("call_id", call.ID),
		zap.Int64("user_id", userID),
	)

	call.Status = model.CallStatusCancelled
	call.NextExecutionAt = nil
	return toCallData(call), nil
}

// TestCall 立即触发一次试打，不影响正常排期。
// 产生的执行记录和正式触发共用投递链路，方便用户确认配置无误
func (s *CallService) TestCall(ctx context.Context, userID, callID int64) (*dto.ExecutionData, error) {
	call, err := s.findOwnedCall(ctx, userID, callID)
	if err != nil {
		return nil, err
	}
	if call.Status == model.CallStatusCancelled {
		return nil, errors.CallNotActive
	}

	now := time.Now()
	execution := &model.CallExecution{
		WakeupCallID: call.ID,
		ScheduledAt:  now,
		Status:       model.ExecutionStatusPending,
	}
	if err := database.DB().WithContext(ctx).Create(execution).Error; err != nil {
		return nil, fmt.Errorf("failed to create test execution: %w", err)
	}

	msg := model.DeliveryMessage{
		ExecutionID:    execution.ID,
		CallID:         call.ID,
		UserID:         call.UserID,
		ScheduledAt:    now.UTC().Format(time.RFC3339),
		Phone:          call.Phone,
		ContactMethod:  string(call.ContactMethod),
		Message:        call.Message,
		IncludeWeather: call.IncludeWeather,
		ZipCode:        call.ZipCode,
		Timezone:       call.Timezone,
	}
	if err := queue.PublishDelivery(msg); err != nil {
		database.DB().WithContext(ctx).
			Model(execution).
			Updates(map[string]interface{}{
				"status":        model.ExecutionStatusFailed,
				"error_message": "publish failed",
			})
		return nil, fmt.Errorf("failed to publish test delivery: %w", err)
	}

	logger.Logger.Info("Test delivery triggered",
		zap.Int64("call_id", call.ID),
		zap.Int64("execution_id", execution.ID),
		zap.Int64("user_id", userID),
	)

	return toExecutionData(execution), nil
}

// ListExecutions 查询任务的执行历史
func (s *CallService) ListExecutions(ctx context.Context, userID, callID int64, query *dto.ExecutionHistoryQuery) ([]*dto.ExecutionData, int64, error) {
	if _, err := s.findOwnedCall(ctx, userID, callID); err != nil {
		return nil, 0, err
	}

	db := database.DB().WithContext(ctx).
		Model(&model.CallExecution{}).
		Where("wakeup_call_id = ?", callID)

	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.From != "" {
		if from, err := time.Parse(time.RFC3339, query.From); err == nil {
			db = db.Where("scheduled_at >= ?", from)
		}
	}
	if query.To != "" {
		if to, err := time.Parse(time.RFC3339, query.To); err == nil {
			db = db.Where("scheduled_at <= ?", to)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count executions: %w", err)
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var executions []*model.CallExecution
	err := db.Order("scheduled_at DESC").
		Limit(limit).
		Offset(query.Offset).
		Find(&executions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list executions: %w", err)
	}

	result := make([]*dto.ExecutionData, len(executions))
	for i, exec := range executions {
		result[i] = toExecutionData(exec)
	}
	return result, total, nil
}

// Stats 统计当前用户的任务和执行情况
func (s *CallService) Stats(ctx context.Context, userID int64) (*dto.StatsData, error) {
	stats := &dto.StatsData{}

	type statusCount struct {
		Status string
		Count  int64
	}

	var callCounts []statusCount
	err := database.DB().WithContext(ctx).
		Model(&model.WakeupCall{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&callCounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count wakeup calls: %w", err)
	}
	for _, c := range callCounts {
		switch model.CallStatus(c.Status) {
		case model.CallStatusActive:
			stats.ActiveCalls = c.Count
		case model.CallStatusPaused:
			stats.PausedCalls = c.Count
		case model.CallStatusCompleted:
			stats.CompletedCalls = c.Count
		case model.CallStatusCancelled:
			stats.CancelledCalls = c.Count
		}
	}

	execDB := database.DB().WithContext(ctx).
		Model(&model.CallExecution{}).
		Joins("JOIN wakeup_calls ON wakeup_calls.id = call_executions.wakeup_call_id").
		Where("wakeup_calls.user_id = ?", userID)

	var execCounts []statusCount
	err = execDB.Session(&gorm.Session{}).
		Select("call_executions.status, COUNT(*) AS count").
		Group("call_executions.status").
		Scan(&execCounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count executions: %w", err)
	}
	for _, c := range execCounts {
		stats.TotalExecutions += c.Count
		switch model.ExecutionStatus(c.Status) {
		case model.ExecutionStatusCompleted:
			stats.Completed = c.Count
		case model.ExecutionStatusFailed:
			stats.Failed = c.Count
		}
	}

	err = execDB.Session(&gorm.Session{}).
		Where("call_executions.snoozed = ?", true).
		Count(&stats.Snoozes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count snooze executions: %w", err)
	}

	return stats, nil
}

func (s *CallService) findOwnedCall(ctx context.Context, userID, callID int64) (*model.WakeupCall, error) {
	var call model.WakeupCall
	err := database.DB().WithContext(ctx).
		Where("id = ?", callID).
		Where("user_id = ?", userID).
		First(&call).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.CallNotFound
		}
		return nil, fmt.Errorf("failed to query wakeup call: %w", err)
	}
	return &call, nil
}

func toCallData(call *model.WakeupCall) *dto.CallData {
	data := &dto.CallData{
		ID:              call.ID,
		Phone:           call.Phone,
		WakeupTime:      call.WakeupTime,
		Timezone:        call.Timezone,
		Frequency:       string(call.Frequency),
		Status:          string(call.Status),
		ContactMethod:   string(call.ContactMethod),
		Message:         call.Message,
		IncludeWeather:  call.IncludeWeather,
		ZipCode:         call.ZipCode,
		NextExecutionAt: call.NextExecutionAt,
		LastExecutedAt:  call.LastExecutedAt,
		CreatedAt:       call.CreatedAt,
	}

	if call.Frequency == model.FrequencyCustom {
		days := []string{}
		for _, d := range []struct {
			name string
			on   bool
		}{
			{"monday", call.Monday},
			{"tuesday", call.Tuesday},
			{"wednesday", call.Wednesday},
			{"thursday", call.Thursday},
			{"friday", call.Friday},
			{"saturday", call.Saturday},
			{"sunday", call.Sunday},
		} {
			if d.on {
				days = append(days, d.name)
			}
		}
		data.Days = days
	}

	return data
}

func toExecutionData(exec *model.CallExecution) *dto.ExecutionData {
	return &dto.ExecutionData{
		ID:           exec.ID,
		WakeupCallID: exec.WakeupCallID,
		ScheduledAt:  exec.ScheduledAt,
		StartedAt:    exec.StartedAt,
		CompletedAt:  exec.CompletedAt,
		Status:       string(exec.Status),
		UserResponse: exec.UserResponse,
		ErrorMessage: exec.ErrorMessage,
		RetryCount:   exec.RetryCount,
		Snoozed:      exec.Snoozed,
	}
}
