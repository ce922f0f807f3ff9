package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"DawnCall/internal/handler"
	"DawnCall/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	// 运营商回调不走 /v1，也不走鉴权，靠 execution_id 定位
	webhooks := h.Group("/webhooks")
	{
		webhooks.POST("/status", handler.StatusCallback)
		webhooks.POST("/twiml/:execution_id", handler.ServeTwiML)
		webhooks.POST("/interaction/:execution_id", handler.Interaction)
	}

	v1 := h.Group("/v1")

	// 认证相关路由
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware()) // 认证接口限流
	{
		auth.POST("/login", handler.Login)
		auth.POST("/token/refresh", handler.RefreshToken)
	}

	// 手机号验证
	verification := v1.Group("/verification")
	{
		verification.POST("/request", middleware.VerificationRateLimitMiddleware(), handler.RequestVerification)
		verification.POST("/confirm", middleware.AuthMiddleware(), handler.ConfirmVerification)
	}

	// 用户相关路由
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware()) // 需要鉴权的路由组
	{
		users.GET("/me", handler.GetUserProfile)
		users.PUT("/me/settings", handler.UpdateUserSettings)
	}

	// 个人统计
	v1.GET("/stats", middleware.AuthMiddleware(), handler.GetStats)

	// 叫醒任务路由
	calls := v1.Group("/calls")
	calls.Use(middleware.AuthMiddleware())
	{
		calls.GET("", handler.ListCalls)
		calls.POST("", middleware.CallMutationRateLimitMiddleware(), handler.CreateCall)
		calls.GET("/:call_id", handler.GetCall)
		calls.PATCH("/:call_id", middleware.CallMutationRateLimitMiddleware(), handler.UpdateCall)
		calls.DELETE("/:call_id", middleware.CallMutationRateLimitMiddleware(), handler.CancelCall)
		calls.POST("/:call_id/pause", middleware.CallMutationRateLimitMiddleware(), handler.PauseCall)
		calls.POST("/:call_id/resume", middleware.CallMutationRateLimitMiddleware(), handler.ResumeCall)
		calls.POST("/:call_id/test", middleware.CallMutationRateLimitMiddleware(), handler.TestCall)
		calls.GET("/:call_id/executions", handler.ListExecutions)
	}
}
