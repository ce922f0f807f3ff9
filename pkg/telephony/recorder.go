package telephony

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"DawnCall/pkg/logger"
)

// RecordedDelivery 一次被记录而非真实发出的投递
type RecordedDelivery struct {
	Channel  string // sms, call
	To       string
	Body     string // SMS 正文或 TwiML URL
	SID      string
	SentAt   time.Time
}

// RecorderClient demo 模式下的触达客户端，不触达运营商，只留痕
type RecorderClient struct {
	mu      sync.Mutex
	Records []RecordedDelivery

	// FailNext 置为 true 时，下一次调用返回错误并自动复位
	FailNext bool
}

func NewRecorderClient() *RecorderClient {
	return &RecorderClient{
		Records: make([]RecordedDelivery, 0),
	}
}

func (r *RecorderClient) record(channel, to, body, sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Records = append(r.Records, RecordedDelivery{
		Channel: channel,
		To:      to,
		Body:    body,
		SID:     sid,
		SentAt:  time.Now(),
	})
}

func (r *RecorderClient) shouldFail() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailNext {
		r.FailNext = false
		return true
	}
	return false
}

// SendSMS 记录一条短信投递并返回合成 SID
func (r *RecorderClient) SendSMS(ctx context.Context, to, body string) (*SendResult, error) {
	if r.shouldFail() {
		return nil, errRecorderFailure
	}

	sid := "demo_sms_" + uuid.NewString()
	r.record("sms", to, body, sid)

	logger.Logger.Info("Recorded SMS delivery",
		zap.String("sid", sid),
	)

	return &SendResult{SID: sid, Status: "queued", Provider: "recorder"}, nil
}

// MakeCall 记录一次外呼并返回合成 SID
func (r *RecorderClient) MakeCall(ctx context.Context, to, twimlURL string) (*SendResult, error) {
	if r.shouldFail() {
		return nil, errRecorderFailure
	}

	sid := "demo_call_" + uuid.NewString()
	r.record("call", to, twimlURL, sid)

	logger.Logger.Info("Recorded call delivery",
		zap.String("sid", sid),
	)

	return &SendResult{SID: sid, Status: "queued", Provider: "recorder"}, nil
}

// Recorded 返回记录快照，供测试和演示查询
func (r *RecorderClient) Recorded() []RecordedDelivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedDelivery, len(r.Records))
	copy(out, r.Records)
	return out
}

type recorderError string

func (e recorderError) Error() string { return string(e) }

const errRecorderFailure = recorderError("recorder configured to fail")
