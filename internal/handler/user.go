package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"DawnCall/internal/model/dto"
	"DawnCall/internal/service"
	"DawnCall/pkg/response"
)

// GetUserProfile 获取用户资料
// GET /v1/users/me
func GetUserProfile(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	data, err := service.User().GetUserProfile(ctx, strconv.FormatInt(user.PublicID, 10))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}

// UpdateUserSettings 更新用户设置
// PUT /v1/users/me/settings
func UpdateUserSettings(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	var req dto.UpdateUserSettingsRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, err := service.User().UpdateUserSettings(ctx, strconv.FormatInt(user.PublicID, 10), &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}
