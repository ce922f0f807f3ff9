package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"DawnCall/config"
)

// 交换机和队列拓扑。延迟交换机依赖 rabbitmq-delayed-message-exchange 插件。
const (
	ExchangeTopic   = "wakeup.topic"
	ExchangeDelayed = "wakeup.delayed"

	QueueDelivery = "delivery.execution"

	RoutingKeyDelivery = "delivery.execution"
)

var conn *amqp.Connection

func Init() error {
	url := config.Cfg.GetRabbitMQURL()

	var err error
	conn, err = amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	return declareTopology(ch)
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		ExchangeTopic,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare topic exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(
		ExchangeDelayed,
		"x-delayed-message",
		true,
		false,
		false,
		false,
		amqp.Table{"x-delayed-type": "topic"},
	); err != nil {
		return fmt.Errorf("failed to declare delayed exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		QueueDelivery,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare delivery queue: %w", err)
	}

	// 即时和延迟消息最终都落到同一个投递队列
	if err := ch.QueueBind(QueueDelivery, RoutingKeyDelivery, ExchangeTopic, false, nil); err != nil {
		return fmt.Errorf("failed to bind delivery queue to topic exchange: %w", err)
	}
	if err := ch.QueueBind(QueueDelivery, RoutingKeyDelivery, ExchangeDelayed, false, nil); err != nil {
		return fmt.Errorf("failed to bind delivery queue to delayed exchange: %w", err)
	}

	return nil
}

func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
