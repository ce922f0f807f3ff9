package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"DawnCall/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

func errorToHTTPStatus(err error) int {
	// 检查是否是 Definition 类型
	def, ok := err.(errors.Definition)
	if !ok {
		if errMsg := err.Error(); errMsg != "" {
			return http.StatusInternalServerError
		}
		return http.StatusInternalServerError
	}

	// 根据错误码映射 HTTP 状态码
	switch def.Code {
	case "VERIFICATION_RATE_LIMITED", "TOO_MANY_REQUESTS":
		return http.StatusTooManyRequests // 429
	case "CALL_NOT_FOUND", "EXECUTION_NOT_FOUND":
		return http.StatusNotFound // 404
	case "UNAUTHORIZED":
		return http.StatusUnauthorized // 401
	case "INVALID_REQUEST", "INVALID_FREQUENCY", "INVALID_TIME_FORMAT",
		"INVALID_CONTACT_METHOD", "INVALID_PHONE_NUMBER",
		"CUSTOM_DAYS_REQUIRED", "CALL_NOT_ACTIVE",
		"VERIFICATION_CODE_EXPIRED", "VERIFICATION_CODE_INVALID",
		"INVALID_USER_ID", "INVALID_ZIP_CODE", "INVALID_TIMEZONE":
		return http.StatusBadRequest // 400
	case "PHONE_NOT_VERIFIED":
		return http.StatusForbidden // 403
	case "EXECUTION_CLAIMED":
		return http.StatusConflict // 409
	case "PROVIDER_UNAVAILABLE", "WEATHER_UNAVAILABLE":
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	var details map[string]interface{}

	if def, ok := err.(errors.Definition); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	if def, ok := err.(errors.Definition); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// NoContent 返回 204 No Content（用于 DELETE 等操作）
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
