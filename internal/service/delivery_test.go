package service

import (
	"context"
	"testing"
	"time"

	"DawnCall/internal/model"
	"DawnCall/pkg/telephony"
)

func TestBuildSMSBody(t *testing.T) {
	s := &DeliveryService{}

	msg := model.DeliveryMessage{}
	body := s.buildSMSBody(msg, "")
	if body != "Good morning! This is your wake-up call. It's time to start your day!" {
		t.Errorf("unexpected body: %q", body)
	}

	msg.Snoozed = true
	body = s.buildSMSBody(msg, "")
	if body != "Rise and shine! This is your snoozed wake-up call. Time to get up!" {
		t.Errorf("unexpected snoozed body: %q", body)
	}
}

func TestBuildSMSBodyWithWeatherAndMessage(t *testing.T) {
	s := &DeliveryService{}

	msg := model.DeliveryMessage{Message: "Meeting at 9."}
	body := s.buildSMSBody(msg, "It's 65 degrees and sunny.")

	want := "Good morning! This is your wake-up call. It's time to start your day!" +
		" It's 65 degrees and sunny." +
		" Meeting at 9."
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestDeliverOnceCompletesCall(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	recorder := telephony.NewRecorderClient()
	telephony.SetClient(recorder)

	user := &model.User{
		PublicID:      1001,
		Phone:         "+15550100001",
		PhoneVerified: true,
		Timezone:      "America/New_York",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}

	call := &model.WakeupCall{
		UserID:        user.ID,
		Phone:         user.Phone,
		Timezone:      user.Timezone,
		WakeupTime:    "07:00",
		Frequency:     model.FrequencyOnce,
		Status:        model.CallStatusActive,
		ContactMethod: model.ContactMethodSMS,
	}
	if err := db.Create(call).Error; err != nil {
		t.Fatal(err)
	}

	execution := &model.CallExecution{
		WakeupCallID: call.ID,
		ScheduledAt:  time.Now(),
		Status:       model.ExecutionStatusPending,
	}
	if err := db.Create(execution).Error; err != nil {
		t.Fatal(err)
	}

	msg := model.DeliveryMessage{
		MessageID:     "msg-once-1",
		ExecutionID:   execution.ID,
		CallID:        call.ID,
		UserID:        user.ID,
		Phone:         call.Phone,
		ContactMethod: string(call.ContactMethod),
	}
	if err := Delivery().Deliver(ctx, msg); err != nil {
		t.Fatal(err)
	}

	var gotExec model.CallExecution
	if err := db.First(&gotExec, execution.ID).Error; err != nil {
		t.Fatal(err)
	}
	if gotExec.Status != model.ExecutionStatusCompleted {
		t.Errorf("execution status = %s, want completed", gotExec.Status)
	}
	if gotExec.ProviderSID == "" {
		t.Error("execution should record the provider SID")
	}

	// 单次任务投递成功后应自动收尾
	var gotCall model.WakeupCall
	if err := db.First(&gotCall, call.ID).Error; err != nil {
		t.Fatal(err)
	}
	if gotCall.Status != model.CallStatusCompleted {
		t.Errorf("call status = %s, want completed", gotCall.Status)
	}

	var logCount int64
	err := db.Model(&model.NotificationLog{}).
		Where("execution_id = ?", execution.ID).
		Count(&logCount).Error
	if err != nil {
		t.Fatal(err)
	}
	if logCount != 1 {
		t.Errorf("notification logs = %d, want 1", logCount)
	}

	records := recorder.Recorded()
	if len(records) != 1 || records[0].Channel != "sms" {
		t.Errorf("recorded deliveries = %+v, want one sms", records)
	}
}

func TestDeliverRefusesUnverifiedDestination(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	recorder := telephony.NewRecorderClient()
	telephony.SetClient(recorder)

	user := &model.User{
		PublicID:      1002,
		Phone:         "+15550100002",
		PhoneVerified: false,
		Timezone:      "America/New_York",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatal(err)
	}

	call := &model.WakeupCall{
		UserID:        user.ID,
		Phone:         user.Phone,
		Timezone:      user.Timezone,
		WakeupTime:    "07:00",
		Frequency:     model.FrequencyDaily,
		Status:        model.CallStatusActive,
		ContactMethod: model.ContactMethodSMS,
	}
	if err := db.Create(call).Error; err != nil {
		t.Fatal(err)
	}

	execution := &model.CallExecution{
		WakeupCallID: call.ID,
		ScheduledAt:  time.Now(),
		Status:       model.ExecutionStatusPending,
	}
	if err := db.Create(execution).Error; err != nil {
		t.Fatal(err)
	}

	msg := model.DeliveryMessage{
		MessageID:     "msg-unverified-1",
		ExecutionID:   execution.ID,
		CallID:        call.ID,
		UserID:        user.ID,
		Phone:         call.Phone,
		ContactMethod: string(call.ContactMethod),
	}
	err := Delivery().Deliver(ctx, msg)
	if err == nil {
		t.Fatal("expected delivery to be refused for unverified destination")
	}

	var gotExec model.CallExecution
	if err := db.First(&gotExec, execution.ID).Error; err != nil {
		t.Fatal(err)
	}
	if gotExec.Status != model.ExecutionStatusFailed {
		t.Errorf("execution status = %s, want failed", gotExec.Status)
	}

	// 未验证号码不能触达运营商
	if records := recorder.Recorded(); len(records) != 0 {
		t.Errorf("recorded deliveries = %+v, want none", records)
	}
}
