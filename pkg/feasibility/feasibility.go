// Package feasibility 提供与求解过程无关的、可独立调用的循环班表可行性
//探针：在不运行完整求解管线的前提下，判断一个 WorkPattern 在给定方案下
// 是否可行，并给出所需的周工时放大系数。
//
// 校验逻辑本身取自预处理器（pkg/icpmp）原本内嵌的步骤 3-5，抽成独立探针
// 后由 icpmp 与对外的 validate_pattern API 共用，避免两处各自维护一份
// 连续天数与周工时上限判断。
package feasibility

import (
	"fmt"

	"github.com/paiban/engine/pkg/model"
)

// ViolationType 是探针发现的问题类别，封闭集合。
type ViolationType string

const (
	// ViolationConsecutiveRun 表示循环班表的最长连续工作段超过方案上限，
	// 判定为不可行。
	ViolationConsecutiveRun ViolationType = "consecutive_run"
	// ViolationWeeklyHours 表示循环班表要求的周工时超过方案上限，不判定
	// 为不可行，但需要放大预估所需人数。
	ViolationWeeklyHours ViolationType = "weekly_hours"
)

// Violation 是探针发现的单条问题。
type Violation struct {
	Type     ViolationType `json:"type"`
	Severity string        `json:"severity"` // error / warning
	Message  string        `json:"message"`
}

// Result 是一次 Probe 调用的结果。
type Result struct {
	Feasible              bool        `json:"feasible"`
	Violations            []Violation `json:"violations,omitempty"`
	LongestConsecutiveRun int         `json:"longest_consecutive_run"`
	ConsecutiveDaysCap    int         `json:"consecutive_days_cap"`
	EstimatedWeeklyHours  float64     `json:"estimated_weekly_hours"`
	WeeklyHourCap         float64     `json:"weekly_hour_cap"`
	// EmployeeScaleFactor 是周工时超限时用于放大基线人数估算的系数；
	// 未超限时为 1。
	EmployeeScaleFactor   float64  `json:"employee_scale_factor"`
	SuggestedAlternatives []string `json:"suggested_alternatives,omitempty"`
}

// Probe 对一个循环班表做独立于求解管线的可行性校验（规范 §4.3 步骤
// 3-5）：先核算周工时相对方案上限的放大系数，再核验连续工作天数是否超
// 过方案的连续上限。shiftNetHours<=0 时按默认班次净工时（11 小时）处理。
func Probe(pattern model.WorkPattern, scheme model.Scheme, shiftNetHours float64, apgdD10 bool) Result {
	if shiftNetHours <= 0 {
		shiftNetHours = model.ShiftType{}.NetHours()
	}

	cycleLength := pattern.Length()
	workDaysPerCycle := pattern.WorkDaysPerCycle()
	if cycleLength == 0 || workDaysPerCycle == 0 {
		cycleLength, workDaysPerCycle = 1, 1
	}

	res := Result{Feasible: true, EmployeeScaleFactor: 1.0}

	res.EstimatedWeeklyHours = float64(workDaysPerCycle) * shiftNetHours * 7 / float64(cycleLength)
	res.WeeklyHourCap = scheme.WeeklyHourCap(shiftNetHours)
	if res.WeeklyHourCap > 0 && res.EstimatedWeeklyHours > res.WeeklyHourCap {
		res.EmployeeScaleFactor = res.EstimatedWeeklyHours / res.WeeklyHourCap
		res.Violations = append(res.Violations, Violation{
			Type:     ViolationWeeklyHours,
			Severity: "warning",
			Message: fmt.Sprintf("循环班表周工时约 %.1f 小时，超过 %s 方案上限 %.1f 小时，按 %.2f 倍放大预估所需人数",
				res.EstimatedWeeklyHours, scheme, res.WeeklyHourCap, res.EmployeeScaleFactor),
		})
	}

	res.LongestConsecutiveRun = pattern.LongestConsecutiveRun()
	res.ConsecutiveDaysCap = scheme.ConsecutiveDaysCap(apgdD10)
	if res.LongestConsecutiveRun > res.ConsecutiveDaysCap {
		res.Feasible = false
		res.Violations = append(res.Violations, Violation{
			Type:     ViolationConsecutiveRun,
			Severity: "error",
			Message: fmt.Sprintf("最长连续工作 %d 天，超过 %s 方案上限 %d 天",
				res.LongestConsecutiveRun, scheme, res.ConsecutiveDaysCap),
		})
		res.SuggestedAlternatives = suggestAlternatives(pattern, res.ConsecutiveDaysCap)
	}

	return res
}

// suggestAlternatives 给出让连续工作段回落到上限以内的改写建议。
func suggestAlternatives(pattern model.WorkPattern, cap int) []string {
	overBy := pattern.LongestConsecutiveRun() - cap
	return []string{
		fmt.Sprintf("将最长连续工作段缩短 %d 天（例如在第 %d 个工作日后插入一个休息位）", overBy, cap),
		"改用跨方案轮转以降低单一方案下的连续工作天数",
	}
}
