package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"DawnCall/internal/middleware"
	"DawnCall/internal/model"
	"DawnCall/internal/model/dto"
	"DawnCall/internal/service"
	"DawnCall/pkg/errors"
	"DawnCall/pkg/response"
)

// currentUser 从 JWT 身份解析出当前用户
func currentUser(ctx context.Context, c *app.RequestContext) (*model.User, bool) {
	publicID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return nil, false
	}

	user, err := service.User().GetByPublicID(ctx, publicID)
	if err != nil {
		response.Error(ctx, c, err)
		return nil, false
	}
	return user, true
}

func callIDParam(ctx context.Context, c *app.RequestContext) (int64, bool) {
	callID, err := strconv.ParseInt(c.Param("call_id"), 10, 64)
	if err != nil {
		response.Error(ctx, c, errors.CallNotFound)
		return 0, false
	}
	return callID, true
}

// CreateCall 创建叫醒任务
// POST /v1/calls
func CreateCall(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	var req dto.CreateCallRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, err := service.Call().CreateCall(ctx, user.ID, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}

// ListCalls 查询叫醒任务列表
// GET /v1/calls
func ListCalls(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	var query dto.ListCallsQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, total, err := service.Call().ListCalls(ctx, user.ID, &query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, data, map[string]interface{}{
		"total": total,
	})
}

// GetCall 查询叫醒任务详情
// GET /v1/calls/:call_id
func GetCall(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}
	callID, ok := callIDParam(ctx, c)
	if !ok {
		return
	}

	data, err := service.Call().GetCall(ctx, user.ID, callID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}

// UpdateCall 更新叫醒任务
// PATCH /v1/calls/:call_id
func UpdateCall(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}
	callID, ok := callIDParam(ctx, c)
	if !ok {
		return
	}

	var req dto.UpdateCallRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, err := service.Call().UpdateCall(ctx, user.ID, callID, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}

// CancelCall 取消叫醒任务
// DELETE /v1/calls/:call_id
func CancelCall(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}
	callID, ok := callIDParam(ctx, c)
	if !ok {
		return
	}

	if _, err := service.Call().CancelCall(ctx, user.ID, callID); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}

// PauseCall 暂停叫醒任务
// POST /v1/calls/:call_id/pause
func PauseCall(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}
	callID, ok := callIDParam(ctx, c)
	if !ok {
		return
	}

	data, err := service.Call().PauseCall(ctx, user.ID, callID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}

// ResumeCall 恢复叫醒任务
// POST /v1/calls/:call_id/resume
func ResumeCall(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}
	callID, ok := callIDParam(ctx, c)
	if !ok {
		return
	}

	data, err := service.Call().ResumeCall(ctx, user.ID, callID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}

// GetStats 查询当前用户的任务和执行统计
// GET /v1/stats
func GetStats(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	data, err := service.Call().Stats(ctx, user.ID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}

// TestCall 立即试打一次
// POST /v1/calls/:call_id/test
func TestCall(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}
	callID, ok := callIDParam(ctx, c)
	if !ok {
		return
	}

	data, err := service.Call().TestCall(ctx, user.ID, callID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, data)
}

// ListExecutions 查询任务执行历史
// GET /v1/calls/:call_id/executions
func ListExecutions(ctx context.Context, c *app.RequestContext) {
	user, ok := currentUser(ctx, c)
	if !ok {
		return
	}
	callID, ok := callIDParam(ctx, c)
	if !ok {
		return
	}

	var query dto.ExecutionHistoryQuery
	if err := c.Bind(&query); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	data, total, err := service.Call().ListExecutions(ctx, user.ID, callID, &query)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.SuccessWithMeta(ctx, c, data, map[string]interface{}{
		"total": total,
	})
}
