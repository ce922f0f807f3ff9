package schedule

// 唤醒调度器：每分钟扫描到期的预约，认领后投递到消息队列

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"DawnCall/config"
	"DawnCall/internal/cache"
	"DawnCall/internal/model"
	"DawnCall/internal/queue"
	"DawnCall/pkg/logger"
	"DawnCall/storage/database"
)

var (
	dispatcherOnce sync.Once
	dispatcherInst *Dispatcher
)

type Dispatcher struct {
	logger          *zap.Logger
	jobRunning      bool
	jobMu           sync.Mutex
	lastDispatchRun time.Time
}

func GetDispatcher() *Dispatcher {
	dispatcherOnce.Do(func() {
		dispatcherInst = &Dispatcher{
			logger: logger.Logger,
		}
	})
	return dispatcherInst
}

// RunOnce 执行一轮派发：查出窗口内到期的 active 预约，逐个认领并发布投递消息
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	d.jobMu.Lock()
	if d.jobRunning {
		d.jobMu.Unlock()
		d.logger.Info("Dispatch job already running, skipping")
		return nil
	}
	d.jobRunning = true
	d.jobMu.Unlock()

	defer func() {
		d.jobMu.Lock()
		d.jobRunning = false
		d.jobMu.Unlock()
	}()

	// 多实例互斥，锁的 TTL 略短于一个扫描周期
	token, locked, err := cache.TryLock(ctx, "dispatch", 55*time.Second)
	if err != nil {
		d.logger.Warn("Failed to acquire dispatch lock, continue anyway", zap.Error(err))
	} else if !locked {
		d.logger.Info("Another dispatcher holds the lock, skipping")
		return nil
	} else {
		defer func() {
			if err := cache.Unlock(ctx, "dispatch", token); err != nil {
				d.logger.Warn("Failed to release dispatch lock", zap.Error(err))
			}
		}()
	}

	startTime := time.Now()
	d.lastDispatchRun = startTime

	window := time.Duration(config.Cfg.DispatchWindowSeconds) * time.Second
	deadline := startTime.Add(window)

	var calls []*model.WakeupCall
	err = database.DB().WithContext(ctx).
		Where("status = ?", model.CallStatusActive).
		Where("next_execution_at IS NOT NULL").
		Where("next_execution_at <= ?", deadline).
		Order("next_execution_at ASC").
		Find(&calls).Error
	if err != nil {
		d.logger.Error("Failed to query due wakeup calls", zap.Error(err))
		return fmt.Errorf("failed to query due wakeup calls: %w", err)
	}

	if len(calls) == 0 {
		return nil
	}

	d.logger.Info("Found due wakeup calls",
		zap.Int("call_count", len(calls)),
		zap.Time("window_end", deadline),
	)

	dispatched := 0
	failures := 0
	for _, call := range calls {
		if err := d.dispatchCall(ctx, call, startTime); err != nil {
			failures++
			d.logger.Error("Failed to dispatch wakeup call",
				zap.Int64("call_id", call.ID),
				zap.Error(err),
			)
			continue
		}
		dispatched++
	}

	d.logger.Info("Dispatch round completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("dispatched", dispatched),
		zap.Int("failures", failures),
	)

	if failures > 0 {
		return fmt.Errorf("dispatch round completed with %d failures", failures)
	}
	return nil
}

// dispatchCall 认领单个预约的本次触发并投递
// Redis 标记只是护栏，数据库的条件更新才是权威判定：
// 只有把 next_execution_at 从 due 推进到下一次的那个实例才真正持有这次触发
func (d *Dispatcher) dispatchCall(ctx context.Context, call *model.WakeupCall, now time.Time) error {
	due := call.NextExecutionAt.UTC()

	claimed, err := cache.TryMarkExecutionClaimed(ctx, call.ID, due)
	if err != nil {
		d.logger.Warn("Failed to check execution claim, continue anyway",
			zap.Int64("call_id", call.ID),
			zap.Error(err),
		)
	} else if !claimed {
		d.logger.Debug("Execution already claimed, skipping",
			zap.Int64("call_id", call.ID),
			zap.Time("due_at", due),
		)
		return nil
	}

	// 计算下一次触发；一次性预约推进后置空，状态由投递侧收尾
	var next *time.Time
	if call.Frequency != model.FrequencyOnce {
		n, err := NextRun(call, due.Add(time.Minute))
		if err != nil {
			cache.UnmarkExecutionClaimed(ctx, call.ID, due)
			return fmt.Errorf("failed to compute next run: %w", err)
		}
		next = &n
	}

	result := database.DB().WithContext(ctx).
		Model(&model.WakeupCall{}).
		Where("id = ?", call.ID).
		Where("status = ?", model.CallStatusActive).
		Where("next_execution_at = ?", call.NextExecutionAt).
		Updates(map[string]interface{}{
			"next_execution_at": next,
			"last_executed_at":  due,
		})
	if result.Error != nil {
		cache.UnmarkExecutionClaimed(ctx, call.ID, due)
		return fmt.Errorf("failed to claim execution: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// 被别的实例抢先，或预约在扫描后被改动
		d.logger.Debug("Execution claim lost, skipping",
			zap.Int64("call_id", call.ID),
			zap.Time("due_at", due),
		)
		return nil
	}

	execution := &model.CallExecution{
		WakeupCallID: call.ID,
		ScheduledAt:  due,
		Status:       model.ExecutionStatusPending,
	}
	if err := database.DB().WithContext(ctx).Create(execution).Error; err != nil {
		cache.UnmarkExecutionClaimed(ctx, call.ID, due)
		return fmt.Errorf("failed to create call execution: %w", err)
	}

	delay := time.Until(due)
	if delay < 0 {
		delay = 0
	}

	msg := model.DeliveryMessage{
		ExecutionID:    execution.ID,
		CallID:         call.ID,
		UserID:         call.UserID,
		ScheduledAt:    due.Format(time.RFC3339),
		Phone:          call.Phone,
		ContactMethod:  string(call.ContactMethod),
		Message:        call.Message,
		IncludeWeather: call.IncludeWeather,
		ZipCode:        call.ZipCode,
		Timezone:       call.Timezone,
		DelaySeconds:   int(delay.Seconds()),
	}

	if err := queue.PublishDelivery(msg); err != nil {
		d.markExecutionFailed(ctx, execution.ID, "publish failed")
		cache.UnmarkExecutionClaimed(ctx, call.ID, due)
		return fmt.Errorf("failed to publish delivery message: %w", err)
	}

	d.logger.Info("Dispatched wakeup call",
		zap.Int64("call_id", call.ID),
		zap.Int64("execution_id", execution.ID),
		zap.Time("due_at", due),
		zap.Duration("delay", delay),
	)

	return nil
}

func (d *Dispatcher) markExecutionFailed(ctx context.Context, executionID int64, reason string) {
	err := database.DB().WithContext(ctx).
		Model(&model.CallExecution{}).
		Where("id = ?", executionID).
		Updates(map[string]interface{}{
			"status":        model.ExecutionStatusFailed,
			"error_message": reason,
		}).Error
	if err != nil {
		d.logger.Warn("Failed to mark execution failed",
			zap.Int64("execution_id", executionID),
			zap.Error(err),
		)
	}
}

// BackfillNextRuns 为 next_execution_at 为空的 active 预约补算下一次触发
// 覆盖进程重启、消息丢失等情况下的漏排
func (d *Dispatcher) BackfillNextRuns(ctx context.Context) error {
	var calls []*model.WakeupCall
	err := database.DB().WithContext(ctx).
		Where("status = ?", model.CallStatusActive).
		Where("next_execution_at IS NULL").
		Find(&calls).Error
	if err != nil {
		return fmt.Errorf("failed to query calls without next run: %w", err)
	}

	if len(calls) == 0 {
		return nil
	}

	now := time.Now()
	backfilled := 0
	for _, call := range calls {
		after := now
		if call.LastExecutedAt != nil && call.LastExecutedAt.Add(time.Minute).After(now) {
			after = call.LastExecutedAt.Add(time.Minute)
		}

		next, err := NextRun(call, after)
		if err != nil {
			d.logger.Warn("Failed to compute next run during backfill",
				zap.Int64("call_id", call.ID),
				zap.Error(err),
			)
			continue
		}

		result := database.DB().WithContext(ctx).
			Model(&model.WakeupCall{}).
			Where("id = ?", call.ID).
			Where("status = ?", model.CallStatusActive).
			Where("next_execution_at IS NULL").
			Update("next_execution_at", next)
		if result.Error != nil {
			d.logger.Warn("Failed to backfill next run",
				zap.Int64("call_id", call.ID),
				zap.Error(result.Error),
			)
			continue
		}
		if result.RowsAffected > 0 {
			backfilled++
		}
	}

	if backfilled > 0 {
		d.logger.Info("Backfilled next runs",
			zap.Int("call_count", backfilled),
		)
	}
	return nil
}
