package schedule

import (
	"testing"
	"time"

	"DawnCall/internal/model"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func baseCall(frequency model.Frequency) *model.WakeupCall {
	return &model.WakeupCall{
		WakeupTime: "07:00",
		Timezone:   "America/New_York",
		Frequency:  frequency,
		Status:     model.CallStatusActive,
	}
}

func TestNextRunDailySameDay(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	call := baseCall(model.FrequencyDaily)

	// 06:59，当天 07:00 还没到，应该选今天
	now := time.Date(2026, 3, 16, 6, 59, 0, 0, loc) // Monday
	got, err := NextRun(call, now)
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2026, 3, 16, 7, 0, 0, 0, loc).UTC()
	if !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}
}

func TestNextRunDailyExactMinute(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	call := baseCall(model.FrequencyDaily)

	// 正好 07:00 创建，结果必须严格在未来，排到明天
	now := time.Date(2026, 3, 16, 7, 0, 0, 0, loc)
	got, err := NextRun(call, now)
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2026, 3, 17, 7, 0, 0, 0, loc).UTC()
	if !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}
	if !got.After(now.UTC()) {
		t.Errorf("NextRun must be strictly after now, got %v", got)
	}
}

func TestNextRunDailyAdvancesPastRun(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	call := baseCall(model.FrequencyDaily)

	// 执行完后用 执行时刻+1分钟 推进，应该落到明天
	ran := time.Date(2026, 3, 16, 7, 0, 0, 0, loc)
	got, err := NextRun(call, ran.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2026, 3, 17, 7, 0, 0, 0, loc).UTC()
	if !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}
}

func TestNextRunWeekdaysSkipsWeekend(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	call := baseCall(model.FrequencyWeekdays)

	// 周五 08:00，下一次是下周一
	now := time.Date(2026, 3, 20, 8, 0, 0, 0, loc) // Friday, past 07:00
	got, err := NextRun(call, now)
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2026, 3, 23, 7, 0, 0, 0, loc).UTC() // Monday
	if !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}
}

func TestNextRunWeekends(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	call := baseCall(model.FrequencyWeekends)

	now := time.Date(2026, 3, 16, 12, 0, 0, 0, loc) // Monday
	got, err := NextRun(call, now)
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2026, 3, 21, 7, 0, 0, 0, loc).UTC() // Saturday
	if !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}
}

func TestNextRunCustomDays(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	call := baseCall(model.FrequencyCustom)
	call.Tuesday = true
	call.Thursday = true

	now := time.Date(2026, 3, 18, 9, 0, 0, 0, loc) // Wednesday
	got, err := NextRun(call, now)
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2026, 3, 19, 7, 0, 0, 0, loc).UTC() // Thursday
	if !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}
}

func TestNextRunCustomWithoutDays(t *testing.T) {
	call := baseCall(model.FrequencyCustom)

	if _, err := NextRun(call, time.Now()); err == nil {
		t.Fatal("expected error for custom frequency without selected days")
	}
}

func TestNextRunWeeklyAnchorsToLastExecution(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	call := baseCall(model.FrequencyWeekly)
	last := time.Date(2026, 3, 10, 7, 0, 0, 0, loc) // Tuesday
	lastUTC := last.UTC()
	call.LastExecutedAt = &lastUTC

	got, err := NextRun(call, last.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}

	want := time.Date(2026, 3, 17, 7, 0, 0, 0, loc).UTC() // next Tuesday
	if !got.Equal(want) {
		t.Errorf("NextRun = %v, want %v", got, want)
	}
}

func TestNextRunInvalidTimezone(t *testing.T) {
	call := baseCall(model.FrequencyDaily)
	call.Timezone = "Mars/Olympus"

	if _, err := NextRun(call, time.Now()); err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}

func TestNextRunInvalidTime(t *testing.T) {
	call := baseCall(model.FrequencyDaily)
	call.WakeupTime = "7am"

	if _, err := NextRun(call, time.Now()); err == nil {
		t.Fatal("expected error for invalid wakeup time")
	}
}

func TestNextRunTimezoneIndependence(t *testing.T) {
	// 同一墙上时间在不同用户时区对应不同的 UTC 时刻
	ny := baseCall(model.FrequencyDaily)
	la := baseCall(model.FrequencyDaily)
	la.Timezone = "America/Los_Angeles"

	after := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

	nyNext, err := NextRun(ny, after)
	if err != nil {
		t.Fatal(err)
	}
	laNext, err := NextRun(la, after)
	if err != nil {
		t.Fatal(err)
	}

	diff := laNext.Sub(nyNext)
	if diff != 3*time.Hour {
		t.Errorf("expected 3h offset between coasts, got %v", diff)
	}
}
