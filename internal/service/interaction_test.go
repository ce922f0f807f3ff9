package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"DawnCall/config"
	"DawnCall/internal/model"
	"DawnCall/internal/model/dto"
	"DawnCall/internal/queue"
)

func TestDecideActionSnooze(t *testing.T) {
	action, reply := DecideAction("1", "")
	if action != ActionSnooze {
		t.Fatalf("action = %v, want ActionSnooze", action)
	}

	want := fmt.Sprintf("Snoozing for %d minutes. Sweet dreams!", config.Cfg.SnoozeMinutes)
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}
}

func TestDecideActionCancel(t *testing.T) {
	action, reply := DecideAction("2", "")
	if action != ActionCancel {
		t.Fatalf("action = %v, want ActionCancel", action)
	}
	if reply != "All future wake-up calls have been cancelled." {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestDecideActionRescheduleSpeech(t *testing.T) {
	// 按键优先于语音
	action, _ := DecideAction("1", "please reschedule")
	if action != ActionSnooze {
		t.Errorf("digits should win over speech, got %v", action)
	}

	action, reply := DecideAction("", "I want to RESCHEDULE my calls")
	if action != ActionReschedule {
		t.Fatalf("action = %v, want ActionReschedule", action)
	}
	if reply != "To reschedule your wake-up calls, please visit the app. Have a great day!" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestDecideActionDefault(t *testing.T) {
	cases := []struct {
		digits string
		speech string
	}{
		{"", ""},
		{"9", ""},
		{"", "thanks I'm up"},
	}

	for _, c := range cases {
		action, reply := DecideAction(c.digits, c.speech)
		if action != ActionAcknowledge {
			t.Errorf("DecideAction(%q, %q) = %v, want ActionAcknowledge", c.digits, c.speech, action)
		}
		if reply != "Thank you! Have a wonderful day!" {
			t.Errorf("unexpected reply: %q", reply)
		}
	}
}

func TestHandleInteractionSnoozeCreatesExecution(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	var published []model.DeliveryMessage
	queue.SetPublishFunc(func(msg model.DeliveryMessage) error {
		published = append(published, msg)
		return nil
	})
	t.Cleanup(func() { queue.SetPublishFunc(nil) })

	call := &model.WakeupCall{
		UserID:        2001,
		Phone:         "+15550200001",
		Timezone:      "America/New_York",
		WakeupTime:    "07:00",
		Frequency:     model.FrequencyDaily,
		Status:        model.CallStatusActive,
		ContactMethod: model.ContactMethodCall,
	}
	if err := db.Create(call).Error; err != nil {
		t.Fatal(err)
	}

	execution := &model.CallExecution{
		WakeupCallID: call.ID,
		ScheduledAt:  time.Now(),
		Status:       model.ExecutionStatusInProgress,
	}
	if err := db.Create(execution).Error; err != nil {
		t.Fatal(err)
	}

	before := time.Now()
	reply, err := Interaction().HandleInteraction(ctx, execution.ID, &dto.InteractionRequest{Digits: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "Snoozing") {
		t.Errorf("reply = %q, want snooze confirmation", reply)
	}

	// 按 1 只能产生一条新的贪睡执行记录
	var executions []model.CallExecution
	err = db.Where("wakeup_call_id = ?", call.ID).
		Order("id").
		Find(&executions).Error
	if err != nil {
		t.Fatal(err)
	}
	if len(executions) != 2 {
		t.Fatalf("executions = %d, want 2", len(executions))
	}

	snoozed := executions[1]
	if !snoozed.Snoozed {
		t.Error("new execution should carry the snoozed flag")
	}
	if snoozed.Status != model.ExecutionStatusPending {
		t.Errorf("snooze execution status = %s, want pending", snoozed.Status)
	}

	wantAt := before.Add(time.Duration(config.Cfg.SnoozeMinutes) * time.Minute)
	if diff := snoozed.ScheduledAt.Sub(wantAt); diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("snooze scheduled at %v, want about %v", snoozed.ScheduledAt, wantAt)
	}

	if !strings.Contains(executions[0].UserResponse, "snoozed") {
		t.Errorf("original execution response = %q, want snooze note", executions[0].UserResponse)
	}

	if len(published) != 1 {
		t.Fatalf("published messages = %d, want 1", len(published))
	}
	msg := published[0]
	if !msg.Snoozed {
		t.Error("published message should carry the snoozed flag")
	}
	if msg.ExecutionID != snoozed.ID {
		t.Errorf("published execution id = %d, want %d", msg.ExecutionID, snoozed.ID)
	}
	if msg.DelaySeconds != config.Cfg.SnoozeMinutes*60 {
		t.Errorf("delay = %d seconds, want %d", msg.DelaySeconds, config.Cfg.SnoozeMinutes*60)
	}
}
