package telephony

import (
	"context"
	"strings"
	"testing"
)

func TestRecorderClient(t *testing.T) {
	r := NewRecorderClient()

	sms, err := r.SendSMS(context.Background(), "+15551234567", "wake up")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(sms.SID, "demo_sms_") {
		t.Errorf("unexpected SMS SID %q", sms.SID)
	}

	call, err := r.MakeCall(context.Background(), "+15551234567", "https://example.com/twiml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(call.SID, "demo_call_") {
		t.Errorf("unexpected call SID %q", call.SID)
	}

	recs := r.Recorded()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Channel != "sms" || recs[1].Channel != "call" {
		t.Errorf("unexpected channels: %+v", recs)
	}
}

func TestRecorderClientFailNext(t *testing.T) {
	r := NewRecorderClient()
	r.FailNext = true

	if _, err := r.SendSMS(context.Background(), "+15551234567", "wake up"); err == nil {
		t.Fatal("expected failure")
	}

	// 失败标志应当自动复位
	if _, err := r.SendSMS(context.Background(), "+15551234567", "wake up"); err != nil {
		t.Fatalf("expected success after reset, got %v", err)
	}
}
