package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"DawnCall/internal/cache"
	"DawnCall/internal/model"
	"DawnCall/internal/model/dto"
	pkgerrors "DawnCall/pkg/errors"
	"DawnCall/pkg/logger"
	"DawnCall/storage/database"
	"DawnCall/utils"
)

// api 曝露的 user_ID 是 public_id，库内主键不出内网

var (
	userService *UserService
	userOnce    sync.Once
)

func User() *UserService {
	userOnce.Do(func() {
		userService = &UserService{}
	})
	return userService
}

type UserService struct{}

// GetByPublicID 按 public_id 查用户，带缓存
func (s *UserService) GetByPublicID(ctx context.Context, publicID string) (*model.User, error) {
	publicIDInt, err := strconv.ParseInt(publicID, 10, 64)
	if err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	var user model.User
	hit, err := cache.UserProfileProtectedCache.Get(ctx, publicID, &user)
	if err == nil && hit && user.ID != 0 {
		return &user, nil
	}

	err = database.DB().WithContext(ctx).
		Where("public_id = ?", publicIDInt).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Unauthorized
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if err := cache.UserProfileProtectedCache.Set(ctx, publicID, &user); err != nil {
		logger.Logger.Warn("Failed to cache user profile",
			zap.String("public_id", publicID),
			zap.Error(err),
		)
	}

	return &user, nil
}

// GetUserProfile 获取用户资料
func (s *UserService) GetUserProfile(ctx context.Context, publicID string) (*dto.UserProfileData, error) {
	user, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	return &dto.UserProfileData{
		ID:       strconv.FormatInt(user.PublicID, 10),
		PublicID: strconv.FormatInt(user.PublicID, 10),
		Nickname: user.Nickname,
		Phone: dto.PhoneInfo{
			NumberMasked: utils.MaskPhone(user.Phone),
			Verified:     user.PhoneVerified,
		},
		Settings: dto.UserSettingsDTO{
			Timezone: user.Timezone,
			ZipCode:  user.ZipCode,
		},
	}, nil
}

// UpdateUserSettings 更新用户设置并刷新缓存
func (s *UserService) UpdateUserSettings(
	ctx context.Context,
	publicID string,
	req *dto.UpdateUserSettingsRequest,
) (*dto.UserProfileData, error) {
	user, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if req.Nickname != nil {
		updates["nickname"] = *req.Nickname
	}
	if req.Timezone != nil {
		if !utils.ValidateTimezone(*req.Timezone) {
			return nil, pkgerrors.InvalidTimezone
		}
		updates["timezone"] = *req.Timezone
	}
	if req.ZipCode != nil {
		if *req.ZipCode != "" && !utils.ValidateZipCode(*req.ZipCode) {
			return nil, pkgerrors.InvalidZipCode
		}
		updates["zip_code"] = *req.ZipCode
	}

	if len(updates) == 0 {
		return s.GetUserProfile(ctx, publicID)
	}

	err = database.DB().WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update user settings: %w", err)
	}

	// 更新后失效缓存，下次读取回源
	if err := cache.UserProfileProtectedCache.Delete(ctx, publicID); err != nil {
		logger.Logger.Warn("Failed to invalidate user profile cache",
			zap.String("public_id", publicID),
			zap.Error(err),
		)
	}

	logger.Logger.Info("User settings updated",
		zap.String("public_id", publicID),
		zap.Any("updates", updates),
	)

	return s.GetUserProfile(ctx, publicID)
}
