package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"DawnCall/internal/cache"
	"DawnCall/internal/model"
	"DawnCall/internal/model/dto"
	"DawnCall/pkg/errors"
	"DawnCall/pkg/logger"
	"DawnCall/pkg/snowflake"
	"DawnCall/pkg/token"
	"DawnCall/storage/database"
	"DawnCall/utils"
)

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = &AuthService{}
	})
	return authService
}

type AuthService struct{}

// Login 手机号加验证码登录，首次登录自动创建账号
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if !utils.ValidatePhone(req.Phone) {
		return nil, errors.InvalidPhoneNumber
	}
	phone := utils.NormalizePhone(req.Phone)

	if err := Verification().VerifyCode(ctx, phone, req.Code); err != nil {
		return nil, err
	}

	isNewUser := false
	var user model.User
	err := database.DB().WithContext(ctx).
		Where("phone = ?", phone).
		First(&user).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("failed to query user: %w", err)
		}

		publicID, err := snowflake.NextID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate user ID: %w", err)
		}

		now := time.Now()
		user = model.User{
			PublicID:      publicID,
			Phone:         phone,
			PhoneVerified: true,
			VerifiedAt:    &now,
			Timezone:      "America/New_York",
		}
		if err := database.DB().WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		isNewUser = true
		logger.Logger.Info("New user created",
			zap.Int64("public_id", publicID),
		)
	} else if !user.PhoneVerified {
		now := time.Now()
		err := database.DB().WithContext(ctx).
			Model(&user).
			Updates(map[string]interface{}{
				"phone_verified": true,
				"verified_at":    now,
			}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to mark phone verified: %w", err)
		}
		user.PhoneVerified = true
	}

	userIDStr := fmt.Sprintf("%d", user.PublicID)
	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := cache.SetRefreshToken(ctx, userIDStr, refreshToken); err != nil {
		logger.Logger.Warn("Failed to store refresh token in Redis",
			zap.String("user_id", userIDStr),
			zap.Error(err),
		)
		// token 已经生成成功，不返回错误
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User: dto.AuthUserSnapshot{
			ID:            userIDStr,
			Nickname:      user.Nickname,
			Phone:         utils.MaskPhone(user.Phone),
			PhoneVerified: user.PhoneVerified,
			IsNewUser:     isNewUser,
		},
	}, nil
}

// RefreshToken 用 refresh token 换新的 token 对
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshTokenResponse, error) {
	userIDStr, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized
	}

	if !cache.ValidateRefreshTokenExists(ctx, userIDStr, refreshToken) {
		return nil, errors.Unauthorized
	}

	accessToken, newRefreshToken, expiresIn, err := token.GenerateTokenPair(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := cache.SetRefreshToken(ctx, userIDStr, newRefreshToken); err != nil {
		logger.Logger.Warn("Failed to update refresh token in Redis",
			zap.String("user_id", userIDStr),
			zap.Error(err),
		)
	}

	return &dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
