package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"DawnCall/config"
	"DawnCall/pkg/errors"
	"DawnCall/pkg/logger"
	mqotel "DawnCall/pkg/mq"
)

type MessageHandler func([]byte) error

type ConsumeOptions struct {
	Queue         string
	ConsumerTag   string
	PrefetchCount int
	Handler       MessageHandler
}

// Consume 阻塞消费指定队列，处理失败重新入队，SkipMessageError 直接丢弃。
// ctx 取消时停止拉取消息并返回 nil，在途消息由 broker 按未确认重新投递
func Consume(ctx context.Context, opts ConsumeOptions) error {
	conn := Connection()

	if conn == nil {
		return fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if opts.PrefetchCount > 0 {
		if err := ch.Qos(opts.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	msgs, err := mqotel.ConsumeWithTracing(
		ch,
		config.Cfg.ServiceName,
		opts.Queue,
		opts.ConsumerTag,
		false, // auto-ack = false
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	logger.Logger.Info("Started consuming messages",
		zap.String("queue", opts.Queue),
		zap.String("consumer_tag", opts.ConsumerTag),
		zap.Int("prefetch_count", opts.PrefetchCount),
	)

	return consumeLoop(ctx, msgs, opts)
}

// consumeLoop 逐条处理消息，直到 ctx 取消或投递通道被关闭
func consumeLoop(ctx context.Context, msgs <-chan amqp.Delivery, opts ConsumeOptions) error {
	for {
		select {
		case <-ctx.Done():
			logger.Logger.Info("Consumer stopping",
				zap.String("queue", opts.Queue),
				zap.String("consumer_tag", opts.ConsumerTag),
			)
			return nil

		case msg, ok := <-msgs:
			if !ok {
				// 连接或通道被关闭，交给上层决定是否重启
				return fmt.Errorf("delivery channel closed for queue %s", opts.Queue)
			}

			if err := opts.Handler(msg.Body); err != nil {
				if errors.IsSkipMessageError(err) {
					logger.Logger.Warn("Dropping message",
						zap.String("queue", opts.Queue),
						zap.Error(err),
					)
					msg.Ack(false)
					continue
				}

				logger.Logger.Error("Failed to process message",
					zap.String("queue", opts.Queue),
					zap.String("consumer_tag", opts.ConsumerTag),
					zap.Error(err),
				)

				msg.Nack(false, true) // requeue = true
				continue
			}

			msg.Ack(false)
		}
	}
}
