package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized    = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID   = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, try again later"}
)

// 叫醒任务模块错误。
var (
	CallNotFound         = Definition{Code: "CALL_NOT_FOUND", Message: "Wake-up call not found"}
	CallNotActive        = Definition{Code: "CALL_NOT_ACTIVE", Message: "Wake-up call is not active"}
	InvalidFrequency     = Definition{Code: "INVALID_FREQUENCY", Message: "Invalid frequency"}
	InvalidTimeFormat    = Definition{Code: "INVALID_TIME_FORMAT", Message: "Invalid time format, expected HH:MM"}
	InvalidContactMethod = Definition{Code: "INVALID_CONTACT_METHOD", Message: "Invalid contact method"}
	InvalidPhoneNumber   = Definition{Code: "INVALID_PHONE_NUMBER", Message: "Invalid phone number"}
	CustomDaysRequired   = Definition{Code: "CUSTOM_DAYS_REQUIRED", Message: "Custom frequency requires at least one weekday"}
	InvalidZipCode       = Definition{Code: "INVALID_ZIP_CODE", Message: "Invalid zip code"}
	InvalidTimezone      = Definition{Code: "INVALID_TIMEZONE", Message: "Invalid timezone"}
)

// 执行记录模块错误。
var (
	ExecutionNotFound = Definition{Code: "EXECUTION_NOT_FOUND", Message: "Call execution not found"}
	ExecutionClaimed  = Definition{Code: "EXECUTION_CLAIMED", Message: "Execution already claimed by another dispatcher"}
)

// 手机号验证模块错误。
var (
	PhoneNotVerified        = Definition{Code: "PHONE_NOT_VERIFIED", Message: "Phone number not verified"}
	VerificationCodeExpired = Definition{Code: "VERIFICATION_CODE_EXPIRED", Message: "Verification code expired"}
	VerificationCodeInvalid = Definition{Code: "VERIFICATION_CODE_INVALID", Message: "Verification code invalid"}
	VerificationRateLimited = Definition{Code: "VERIFICATION_RATE_LIMITED", Message: "Too many verification requests"}
)

// 投递模块错误。
var (
	DeliveryFailed      = Definition{Code: "DELIVERY_FAILED", Message: "Delivery attempt failed"}
	ProviderUnavailable = Definition{Code: "PROVIDER_UNAVAILABLE", Message: "Telephony provider unavailable"}
	WeatherUnavailable  = Definition{Code: "WEATHER_UNAVAILABLE", Message: "Weather service unavailable"}
)

// JWT 相关的哨兵错误。
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrUserIDNotFound               = errors.New("user id not found in token")
)

// skipMessage 标记某条队列消息应当被丢弃而非重新入队。
type skipMessage struct {
	reason string
}

func (s skipMessage) Error() string {
	return "skip message: " + s.reason
}

// SkipMessageError 包装一个不值得重试的消费错误。
func SkipMessageError(reason string) error {
	return skipMessage{reason: reason}
}

// IsSkipMessageError 判断消费错误是否应丢弃消息。
func IsSkipMessageError(err error) bool {
	var s skipMessage
	return errors.As(err, &s)
}

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:            Unauthorized,
	TooManyRequests.Code:         TooManyRequests,
	InvalidUserID.Code:           InvalidUserID,
	CallNotFound.Code:            CallNotFound,
	CallNotActive.Code:           CallNotActive,
	InvalidFrequency.Code:        InvalidFrequency,
	InvalidTimeFormat.Code:       InvalidTimeFormat,
	InvalidContactMethod.Code:    InvalidContactMethod,
	InvalidPhoneNumber.Code:      InvalidPhoneNumber,
	CustomDaysRequired.Code:      CustomDaysRequired,
	InvalidZipCode.Code:          InvalidZipCode,
	InvalidTimezone.Code:         InvalidTimezone,
	ExecutionNotFound.Code:       ExecutionNotFound,
	ExecutionClaimed.Code:        ExecutionClaimed,
	PhoneNotVerified.Code:        PhoneNotVerified,
	VerificationCodeExpired.Code: VerificationCodeExpired,
	VerificationCodeInvalid.Code: VerificationCodeInvalid,
	VerificationRateLimited.Code: VerificationRateLimited,
	DeliveryFailed.Code:          DeliveryFailed,
	ProviderUnavailable.Code:     ProviderUnavailable,
	WeatherUnavailable.Code:      WeatherUnavailable,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
