package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"DawnCall/internal/cache"
	"DawnCall/internal/model"
	"DawnCall/pkg/errors"
	"DawnCall/pkg/logger"
	"DawnCall/storage/mq"
)

type DeliveryService interface {
	Deliver(ctx context.Context, msg model.DeliveryMessage) error
}

var deliveryService DeliveryService

// SetDeliveryService 设置投递服务（在 worker 启动时调用）
func SetDeliveryService(s DeliveryService) {
	deliveryService = s
}

// StartDeliveryConsumer 启动唤醒投递消费者
func StartDeliveryConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.DeliveryMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			logger.Logger.Error("Failed to unmarshal delivery message",
				zap.Error(err),
				zap.String("body", string(body)),
			)
			// 格式错误的消息重试也没用，直接丢弃
			return errors.SkipMessageError("malformed delivery message")
		}

		// 幂等保护：同一条消息只处理一次
		first, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message idempotency, continue anyway",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !first {
			logger.Logger.Info("Duplicate delivery message, skipping",
				zap.String("message_id", msg.MessageID),
				zap.Int64("execution_id", msg.ExecutionID),
			)
			return errors.SkipMessageError("duplicate message")
		}

		if deliveryService == nil {
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("delivery service not initialized")
		}

		if err := deliveryService.Deliver(ctx, msg); err != nil {
			if errors.IsSkipMessageError(err) {
				// 业务上不需要投递（预约已取消/暂停等），标记已处理后丢弃
				cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour)
				return err
			}
			// 失败时解除处理标记，让重投有机会再来
			cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("failed to deliver wakeup call: %w", err)
		}

		cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour)
		return nil
	}

	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.QueueDelivery,
		ConsumerTag:   "delivery_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartAllConsumers 启动所有消费者，任意一个退出即返回
func StartAllConsumers(ctx context.Context) error {
	consumers := []struct {
		name  string
		start func(context.Context) error
	}{
		{"delivery", StartDeliveryConsumer},
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(consumers))

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, start func(context.Context) error) {
			defer wg.Done()
			logger.Logger.Info("Starting consumer", zap.String("consumer", name))
			if err := start(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer", name),
					zap.Error(err),
				)
				errCh <- fmt.Errorf("consumer %s: %w", name, err)
			}
		}(c.name, c.start)
	}

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}
