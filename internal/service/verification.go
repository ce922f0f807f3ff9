package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"DawnCall/config"
	"DawnCall/internal/cache"
	"DawnCall/internal/model"
	pkgerrors "DawnCall/pkg/errors"
	"DawnCall/pkg/logger"
	"DawnCall/pkg/telephony"
	"DawnCall/storage/database"
	"DawnCall/utils"
)

var (
	verificationService *VerificationService
	verifyOnce          sync.Once
)

func Verification() *VerificationService {
	verifyOnce.Do(func() {
		verificationService = &VerificationService{}
	})

	return verificationService
}

type VerificationService struct{}

func generateVerificationCode() string {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// RequestCode 下发验证码短信，同一手机号每日限量
func (s *VerificationService) RequestCode(ctx context.Context, phone string) error {
	if !utils.ValidatePhone(phone) {
		return pkgerrors.InvalidPhoneNumber
	}
	phone = utils.NormalizePhone(phone)
	phoneHash := utils.HashPhone(phone)

	count, err := cache.IncrVerificationCount(ctx, phoneHash)
	if err != nil {
		return fmt.Errorf("failed to check verification count: %w", err)
	}

	if count > config.Cfg.VerificationMaxDaily {
		return pkgerrors.VerificationRateLimited
	}

	code := generateVerificationCode()

	if err := cache.SetVerificationCode(ctx, phoneHash, code); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	// 留一条落库记录，Attempts 在校验阶段计数
	record := &model.PhoneVerification{
		Phone:     phone,
		Code:      code,
		ExpiresAt: time.Now().Add(time.Duration(config.Cfg.VerificationExpireSeconds) * time.Second),
	}
	if user, err := s.findUserByPhone(ctx, phone); err == nil {
		record.UserID = user.ID
	}
	if err := database.DB().WithContext(ctx).Create(record).Error; err != nil {
		logger.Logger.Warn("Failed to persist verification record",
			zap.String("phone_hash", phoneHash),
			zap.Error(err),
		)
	}

	body := fmt.Sprintf("Your DawnCall verification code is %s. It expires in %d minutes.",
		code, config.Cfg.VerificationExpireSeconds/60)

	if _, err := telephony.SendSMS(ctx, phone, body); err != nil {
		cache.DeleteVerificationCode(ctx, phoneHash)
		logger.Logger.Error("Failed to send verification SMS",
			zap.String("phone_hash", phoneHash),
			zap.Error(err),
		)

		if config.Cfg.IsDevelopment() {
			return fmt.Errorf("failed to send SMS: %w", err)
		}
	}

	return nil
}

// VerifyCode 校验验证码，尝试次数超限后作废
func (s *VerificationService) VerifyCode(ctx context.Context, phone, code string) error {
	phone = utils.NormalizePhone(phone)
	phoneHash := utils.HashPhone(phone)

	storedCode, err := cache.GetVerificationCode(ctx, phoneHash)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return pkgerrors.VerificationCodeExpired
		}
		return fmt.Errorf("failed to get verification code: %w", err)
	}

	record, recordErr := s.latestRecord(ctx, phone)
	if recordErr == nil && record.Exhausted(config.Cfg.VerificationMaxAttempts) {
		cache.DeleteVerificationCode(ctx, phoneHash)
		return pkgerrors.VerificationCodeExpired
	}

	if storedCode != code {
		if recordErr == nil {
			database.DB().WithContext(ctx).
				Model(record).
				Update("attempts", gorm.Expr("attempts + 1"))
		}
		return pkgerrors.VerificationCodeInvalid
	}

	cache.DeleteVerificationCode(ctx, phoneHash)

	if recordErr == nil {
		now := time.Now()
		database.DB().WithContext(ctx).
			Model(record).
			Update("verified_at", now)
	}

	return nil
}

// ConfirmForUser 校验验证码并把手机号绑定到用户、标记已验证
func (s *VerificationService) ConfirmForUser(ctx context.Context, user *model.User, phone, code string) error {
	if !utils.ValidatePhone(phone) {
		return pkgerrors.InvalidPhoneNumber
	}
	phone = utils.NormalizePhone(phone)

	if err := s.VerifyCode(ctx, phone, code); err != nil {
		return err
	}

	now := time.Now()
	err := database.DB().WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"phone":          phone,
			"phone_verified": true,
			"verified_at":    now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark phone verified: %w", err)
	}

	// 资料缓存里还是旧手机号，直接失效
	publicID := strconv.FormatInt(user.PublicID, 10)
	if err := cache.UserProfileProtectedCache.Delete(ctx, publicID); err != nil {
		logger.Logger.Warn("Failed to invalidate user profile cache",
			zap.String("public_id", publicID),
			zap.Error(err),
		)
	}

	logger.Logger.Info("Phone verified for user",
		zap.Int64("user_id", user.ID),
	)
	return nil
}

func (s *VerificationService) latestRecord(ctx context.Context, phone string) (*model.PhoneVerification, error) {
	var record model.PhoneVerification
	err := database.DB().WithContext(ctx).
		Where("phone = ?", phone).
		Where("verified_at IS NULL").
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *VerificationService) findUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	var user model.User
	err := database.DB().WithContext(ctx).
		Where("phone = ?", phone).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
