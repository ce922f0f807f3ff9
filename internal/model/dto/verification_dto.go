package dto

// ========== 手机号验证相关 DTO ==========

// RequestVerificationRequest 请求下发验证码
type RequestVerificationRequest struct {
	Phone string `json:"phone"`
}

// ConfirmVerificationRequest 提交验证码
type ConfirmVerificationRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// VerificationData 验证结果数据
type VerificationData struct {
	Phone    string `json:"phone"`
	Verified bool   `json:"verified"`
}
