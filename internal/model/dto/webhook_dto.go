package dto

// ========== 运营商回执相关 DTO ==========

// StatusCallbackRequest 运营商状态回执（Twilio 以表单提交）
type StatusCallbackRequest struct {
	MessageSid   string `form:"MessageSid" json:"MessageSid"`
	CallSid      string `form:"CallSid" json:"CallSid"`
	MessageStatus string `form:"MessageStatus" json:"MessageStatus"`
	CallStatus   string `form:"CallStatus" json:"CallStatus"`
	ErrorCode    string `form:"ErrorCode" json:"ErrorCode"`
	ErrorMessage string `form:"ErrorMessage" json:"ErrorMessage"`
}

// InteractionRequest IVR 按键或语音回调
type InteractionRequest struct {
	CallSid      string `form:"CallSid" json:"CallSid"`
	Digits       string `form:"Digits" json:"Digits"`
	SpeechResult string `form:"SpeechResult" json:"SpeechResult"`
}
