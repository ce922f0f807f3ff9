package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"DawnCall/config"
	"DawnCall/internal/schedule"
	"DawnCall/pkg/logger"
	"DawnCall/pkg/snowflake"
	"DawnCall/storage"
)

func main() {

	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage for scheduler", zap.Error(err))
	}
	defer storage.Close()

	// 考虑与 worker 和 server 作区分
	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake for scheduler", zap.Error(err))
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", "dawncall-scheduler"),
		zap.String("environment", config.Cfg.Environment),
	)

	go runDispatchLoop(ctx)
	go runBackfillLoop(ctx)

	<-ctx.Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}

// runDispatchLoop 每分钟整点扫描一次到期的叫醒任务并投递
func runDispatchLoop(ctx context.Context) {
	d := schedule.GetDispatcher()

	// 启动后先补跑一轮，避免正好错过整点
	runCtx, cancelFirst := context.WithTimeout(ctx, 2*time.Minute)
	if err := d.RunOnce(runCtx); err != nil {
		logger.Logger.Error("Dispatch run failed", zap.Error(err))
	}
	cancelFirst()

	for {
		// 对齐到下一个整分钟，派发窗口按分钟粒度计算
		now := time.Now()
		next := now.Truncate(time.Minute).Add(time.Minute)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			if err := d.RunOnce(runCtx); err != nil {
				logger.Logger.Error("Dispatch run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// runBackfillLoop 周期性回填缺失 next_execution_at 的活跃任务
// 当前实现：每 10 分钟扫描一次。
func runBackfillLoop(ctx context.Context) {
	d := schedule.GetDispatcher()

	interval := 10 * time.Minute
	if config.Cfg.Environment == "development" {
		interval = 1 * time.Minute
		logger.Logger.Info("Backfill loop running in development mode with 1m interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			if err := d.BackfillNextRuns(runCtx); err != nil {
				logger.Logger.Error("Backfill run failed", zap.Error(err))
			}
			cancel()
		}
	}
}
