package main

// 运维辅助命令：灌演示数据、批量标记手机号已验证。
// 直接连库操作，不经过验证码流程，只在开发和演示环境使用。

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"DawnCall/config"
	"DawnCall/internal/model"
	"DawnCall/internal/schedule"
	"DawnCall/pkg/logger"
	"DawnCall/pkg/snowflake"
	"DawnCall/storage"
	"DawnCall/storage/database"
	"DawnCall/utils"
)

func main() {
	logger.Init()
	defer logger.Sync()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "seed":
		err = runSeed(ctx, os.Args[2:])
	case "verify":
		err = runVerify(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Logger.Fatal("Command failed",
			zap.String("command", os.Args[1]),
			zap.Error(err),
		)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: seed <command> [flags]")
	fmt.Fprintln(os.Stderr, "  seed    create demo users and wakeup calls")
	fmt.Fprintln(os.Stderr, "  verify  mark phone numbers as verified (comma-separated list)")
}

// runSeed 造 N 个演示用户，每人若干条叫醒任务
func runSeed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	userCount := fs.Int("users", 3, "number of demo users to create")
	callsPerUser := fs.Int("calls", 2, "wakeup calls per user")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if config.Cfg.Environment == "production" {
		return fmt.Errorf("refusing to seed demo data in production")
	}

	frequencies := []model.Frequency{
		model.FrequencyDaily,
		model.FrequencyWeekdays,
		model.FrequencyOnce,
	}
	times := []string{"06:30", "07:00", "07:45", "08:15"}

	created := 0
	for i := 0; i < *userCount; i++ {
		publicID, err := snowflake.NextID()
		if err != nil {
			return fmt.Errorf("failed to generate public ID: %w", err)
		}

		user := &model.User{
			PublicID:      publicID,
			Nickname:      fmt.Sprintf("demo-%02d", i+1),
			Phone:         fmt.Sprintf("+1555010%04d", i+1),
			PhoneVerified: true,
			Timezone:      "America/New_York",
			ZipCode:       "10001",
		}
		now := time.Now()
		user.VerifiedAt = &now

		if err := storageCreate(ctx, user); err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}

		for j := 0; j < *callsPerUser; j++ {
			call := &model.WakeupCall{
				UserID:         user.ID,
				Phone:          user.Phone,
				Timezone:       user.Timezone,
				WakeupTime:     times[(i+j)%len(times)],
				Frequency:      frequencies[j%len(frequencies)],
				Status:         model.CallStatusActive,
				ContactMethod:  model.ContactMethodSMS,
				Message:        "Seeded demo wake-up call.",
				IncludeWeather: j%2 == 0,
				ZipCode:        user.ZipCode,
			}

			next, err := schedule.NextRun(call, time.Now())
			if err != nil {
				return fmt.Errorf("failed to compute next run: %w", err)
			}
			call.NextExecutionAt = &next

			if err := storageCreate(ctx, call); err != nil {
				return fmt.Errorf("failed to create demo call: %w", err)
			}
			created++
		}

		logger.Logger.Info("Seeded demo user",
			zap.Int64("user_id", user.ID),
			zap.String("phone", user.Phone),
			zap.Int("calls", *callsPerUser),
		)
	}

	logger.Logger.Info("Seeding completed",
		zap.Int("users", *userCount),
		zap.Int("calls", created),
	)
	return nil
}

// runVerify 批量把手机号标记为已验证，
// 同时落一条已验证的验证记录，让投递侧的本地校验放行
func runVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	phones := fs.String("phones", "", "comma-separated phone numbers to mark verified")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *phones == "" {
		return fmt.Errorf("no phone numbers given, use -phones")
	}

	now := time.Now()
	verified := 0
	for _, raw := range strings.Split(*phones, ",") {
		phone := strings.TrimSpace(raw)
		if phone == "" {
			continue
		}
		if !utils.ValidatePhone(phone) {
			logger.Logger.Warn("Skipping invalid phone number",
				zap.String("phone", phone),
			)
			continue
		}
		phone = utils.NormalizePhone(phone)

		if err := markPhoneVerified(ctx, phone, now); err != nil {
			return fmt.Errorf("failed to verify %s: %w", phone, err)
		}
		verified++

		logger.Logger.Info("Phone marked verified",
			zap.String("phone_hash", utils.HashPhone(phone)),
		)
	}

	logger.Logger.Info("Batch verification completed",
		zap.Int("verified", verified),
	)
	return nil
}

func storageCreate(ctx context.Context, value interface{}) error {
	return database.DB().WithContext(ctx).Create(value).Error
}

func markPhoneVerified(ctx context.Context, phone string, now time.Time) error {
	db := database.DB().WithContext(ctx)

	record := &model.PhoneVerification{
		Phone:     phone,
		Code:      "000000",
		ExpiresAt: now,
	}
	record.VerifiedAt = &now

	var user model.User
	if err := db.Where("phone = ?", phone).First(&user).Error; err == nil {
		record.UserID = user.ID
		err := db.Model(&model.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]interface{}{
				"phone_verified": true,
				"verified_at":    now,
			}).Error
		if err != nil {
			return err
		}
	}

	return db.Create(record).Error
}
