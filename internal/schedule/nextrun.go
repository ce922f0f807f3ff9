package schedule

// 下次执行时间计算。所有比较都在任务自身时区内进行，结果转成 UTC 存库。

import (
	"fmt"
	"time"

	"DawnCall/internal/model"
	"DawnCall/utils"
)

// 最多向前扫描两周，custom 任务至少每周命中一次，扫不到说明配置非法
const maxScanDays = 14

// NextRun 计算任务在 after 之后最早的执行时刻，结果严格大于 after，
// 正好落在叫醒那一分钟创建的任务排到下一个周期。
// 刚执行完推进时间时，调用方应传 after = 本次执行时刻 + 1 分钟，
// 调度全部按分钟对齐，这样刚执行过的时刻不会被再次选中。
func NextRun(call *model.WakeupCall, after time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(call.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", call.Timezone, err)
	}

	hour, minute, err := utils.ParseTimeOfDay(call.WakeupTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid wakeup time %q: %w", call.WakeupTime, err)
	}

	if call.Frequency == model.FrequencyCustom && !call.HasCustomDay() {
		return time.Time{}, fmt.Errorf("custom frequency without any weekday selected")
	}

	after = utils.TruncateMinute(after)
	local := after.In(loc)

	for i := 0; i < maxScanDays; i++ {
		day := local.AddDate(0, 0, i)
		candidate := utils.CombineDate(day, hour, minute)
		if !candidate.After(after) {
			continue
		}
		if !activeOn(call, candidate, loc) {
			continue
		}
		return candidate.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("no valid execution day within %d days", maxScanDays)
}

// activeOn 判断任务在 candidate 当天是否生效
func activeOn(call *model.WakeupCall, candidate time.Time, loc *time.Location) bool {
	switch call.Frequency {
	case model.FrequencyWeekly:
		return candidate.Weekday() == weeklyAnchor(call, loc)
	default:
		return call.ActiveOnWeekday(candidate.Weekday())
	}
}

// weeklyAnchor 返回 weekly 任务锚定的星期几。
// 已执行过的任务锚定上次执行日，否则锚定创建后第一个可执行日。
func weeklyAnchor(call *model.WakeupCall, loc *time.Location) time.Weekday {
	if call.LastExecutedAt != nil {
		return call.LastExecutedAt.In(loc).Weekday()
	}

	hour, minute, err := utils.ParseTimeOfDay(call.WakeupTime)
	if err != nil {
		return call.CreatedAt.In(loc).Weekday()
	}

	created := call.CreatedAt.In(loc)
	first := utils.CombineDate(created, hour, minute)
	if first.Before(created) {
		first = first.AddDate(0, 0, 1)
	}
	return first.Weekday()
}
