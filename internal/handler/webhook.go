package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"DawnCall/internal/model/dto"
	"DawnCall/internal/service"
	"DawnCall/pkg/logger"
	"DawnCall/pkg/response"
	"DawnCall/pkg/telephony"
)

// 回调给运营商的应答必须是 200，否则 Twilio 会重试甚至播报错误提示

func executionIDParam(c *app.RequestContext) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("execution_id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// fallbackScript 内部出错时的兜底应答，保证电话那头不会听到报错
func fallbackScript(c *app.RequestContext, executionID int64, cause error) {
	logger.Logger.Error("Webhook handling failed, serving fallback script",
		zap.Int64("execution_id", executionID),
		zap.Error(cause),
	)

	script, err := telephony.BuildSayResponse("Good morning! This is your wake-up call. Have a great day!")
	if err != nil {
		c.Status(http.StatusOK)
		return
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(script))
}

// StatusCallback 运营商状态回执
// POST /webhooks/status
func StatusCallback(ctx context.Context, c *app.RequestContext) {
	var req dto.StatusCallbackRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Webhook().ProcessStatusCallback(ctx, &req); err != nil {
		response.Error(ctx, c, err)
		return
	}
	c.Status(http.StatusOK)
}

// ServeTwiML 被叫接通后 Twilio 来取通话脚本
// POST /webhooks/twiml/:execution_id
func ServeTwiML(ctx context.Context, c *app.RequestContext) {
	executionID, ok := executionIDParam(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	script, err := service.Interaction().BuildCallScript(ctx, executionID)
	if err != nil {
		fallbackScript(c, executionID, err)
		return
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(script))
}

// Interaction IVR 按键或语音回调
// POST /webhooks/interaction/:execution_id
func Interaction(ctx context.Context, c *app.RequestContext) {
	executionID, ok := executionIDParam(c)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	var req dto.InteractionRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	script, err := service.Interaction().HandleInteraction(ctx, executionID, &req)
	if err != nil {
		fallbackScript(c, executionID, err)
		return
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(script))
}
