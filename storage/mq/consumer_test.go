package mq

import (
	"context"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"DawnCall/pkg/errors"
)

// fakeAcker 记录 ack/nack 结果，替代真实 broker 通道
type fakeAcker struct {
	acked   []uint64
	nacked  []uint64
	requeue bool
}

func (f *fakeAcker) Ack(tag uint64, multiple bool) error {
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeAcker) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked = append(f.nacked, tag)
	f.requeue = requeue
	return nil
}

func (f *fakeAcker) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func delivery(acker *fakeAcker, tag uint64, body string) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: acker,
		DeliveryTag:  tag,
		Body:         []byte(body),
	}
}

func TestConsumeLoopAckNack(t *testing.T) {
	acker := &fakeAcker{}
	msgs := make(chan amqp.Delivery, 3)
	msgs <- delivery(acker, 1, "ok")
	msgs <- delivery(acker, 2, "skip")
	msgs <- delivery(acker, 3, "fail")

	ctx, cancel := context.WithCancel(context.Background())

	handled := 0
	opts := ConsumeOptions{
		Queue: "test.queue",
		Handler: func(body []byte) error {
			handled++
			if handled == 3 {
				// 最后一条处理完成后停止循环
				defer cancel()
			}
			switch string(body) {
			case "skip":
				return errors.SkipMessageError("not needed")
			case "fail":
				return fmt.Errorf("provider unreachable")
			}
			return nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- consumeLoop(ctx, msgs, opts) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("consumeLoop returned %v after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consumeLoop did not stop after context cancel")
	}

	if handled != 3 {
		t.Fatalf("handled = %d, want 3", handled)
	}
	// 成功和跳过都应确认，业务失败重新入队
	if len(acker.acked) != 2 {
		t.Errorf("acked = %v, want tags 1 and 2", acker.acked)
	}
	if len(acker.nacked) != 1 || acker.nacked[0] != 3 {
		t.Errorf("nacked = %v, want tag 3", acker.nacked)
	}
	if !acker.requeue {
		t.Error("failed message should be requeued")
	}
}

func TestConsumeLoopStopsOnCancel(t *testing.T) {
	msgs := make(chan amqp.Delivery)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- consumeLoop(ctx, msgs, ConsumeOptions{Queue: "test.queue"})
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("consumeLoop returned %v, want nil on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("consumeLoop did not stop after context cancel")
	}
}

func TestConsumeLoopChannelClosed(t *testing.T) {
	msgs := make(chan amqp.Delivery)
	close(msgs)

	err := consumeLoop(context.Background(), msgs, ConsumeOptions{Queue: "test.queue"})
	if err == nil {
		t.Fatal("expected error when delivery channel closes unexpectedly")
	}
}
