package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"DawnCall/internal/model/dto"
	"DawnCall/internal/service"
	"DawnCall/pkg/response"
	"DawnCall/utils"
)

// RequestVerification 请求下发验证码
// POST /v1/verification/request
func RequestVerification(ctx context.Context, c *app.RequestContext) {
	var req dto.RequestVerificationRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Verification().RequestCode(ctx, req.Phone); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.VerificationData{
		Phone:    utils.MaskPhone(utils.NormalizePhone(req.Phone)),
		Verified: false,
	})
}

// ConfirmVerification 提交验证码，成功后绑定并标记当前用户手机号已验证
// POST /v1/verification/confirm
func ConfirmVerification(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	var req dto.ConfirmVerificationRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Verification().ConfirmForUser(ctx, user, req.Phone, req.Code); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.VerificationData{
		Phone:    utils.MaskPhone(utils.NormalizePhone(req.Phone)),
		Verified: true,
	})
}
