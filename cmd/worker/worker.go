package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"DawnCall/config"
	"DawnCall/internal/queue"
	"DawnCall/internal/service"
	"DawnCall/pkg/logger"
	"DawnCall/pkg/metrics"
	"DawnCall/pkg/otel"
	"DawnCall/pkg/snowflake"
	"DawnCall/pkg/telephony"
	"DawnCall/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// 可观测性：endpoint 未配置时跳过上报，指标调用自动降级为 no-op
	if config.Cfg.OTLPEndpoint != "" {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:    "dawncall-worker",
			ServiceVersion: config.Cfg.ServiceVersion,
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.OTLPEndpoint,
			SampleRatio:    config.Cfg.OTelSampleRate,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Logger.Warn("OpenTelemetry shutdown failed", zap.Error(err))
				}
			}()
		}
		if err := metrics.InitMetrics(); err != nil {
			logger.Logger.Warn("Failed to initialize metrics", zap.Error(err))
		}
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	// 考虑之后循环启动不同的 snowflakeID
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	// worker 是实际发起外呼/短信的一端，电话客户端初始化失败直接退出
	if err := telephony.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize telephony client", zap.Error(err))
	}

	// 设置投递服务, 所有消费者都走这一环节
	queue.SetDeliveryService(service.Delivery())

	logger.Logger.Info("Worker service starting",
		zap.String("service", "dawncall-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	//启动所有的消费者部分
	queue.StartAllConsumers(ctx)

	logger.Logger.Info("Worker service shutting down gracefully")
}
