package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"DawnCall/internal/model"
	"DawnCall/pkg/logger"
	"DawnCall/pkg/snowflake"
	"DawnCall/storage/mq"
)

// 延迟交换机插件的单条消息延迟上限
const maxPublishDelay = 24 * time.Hour

// publishFn 测试注入的发布函数，绕过真实 MQ
var publishFn func(model.DeliveryMessage) error

// SetPublishFunc 注入发布函数，仅用于测试
func SetPublishFunc(fn func(model.DeliveryMessage) error) {
	publishFn = fn
}

// PublishDelivery 发布投递消息。DelaySeconds 为 0 时走即时交换机，
// 否则走延迟交换机；超过 24 小时的延迟由 dispatcher 的周期扫描兜底。
func PublishDelivery(msg model.DeliveryMessage) error {
	if publishFn != nil {
		return publishFn(msg)
	}
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("execution_id", msg.ExecutionID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("delivery_%d", id)
	}

	delay := time.Duration(msg.DelaySeconds) * time.Second
	if delay > maxPublishDelay {
		return fmt.Errorf("delay %v exceeds 24 hours limit, use scheduled scan instead", delay)
	}

	var err error
	if delay > 0 {
		err = mq.PublishDelayedMessage(
			mq.ExchangeDelayed,
			mq.RoutingKeyDelivery,
			delay,
			msg,
		)
	} else {
		err = mq.PublishMessage(
			mq.ExchangeTopic,
			mq.RoutingKeyDelivery,
			msg,
		)
	}

	if err != nil {
		logger.Logger.Error("Failed to publish delivery message",
			zap.String("message_id", msg.MessageID),
			zap.Int64("execution_id", msg.ExecutionID),
			zap.Int64("call_id", msg.CallID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published delivery message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("execution_id", msg.ExecutionID),
		zap.Int64("call_id", msg.CallID),
		zap.Duration("delay", delay),
		zap.Bool("snoozed", msg.Snoozed),
	)

	return nil
}
