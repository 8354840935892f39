package model

import "strings"

// Scheme 是员工的雇佣形式：A（全职标准）、B（全职合约）、P（兼职）。
type Scheme string

const (
	SchemeA Scheme = "A"
	SchemeB Scheme = "B"
	SchemeP Scheme = "P"
)

// NormalizeScheme 把输入形式（"Scheme A"、"a"、"A"）规整为规范字母。
// 无法识别时返回 ok=false，调用方应报 InvalidInput。
func NormalizeScheme(raw string) (Scheme, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "SCHEME ")
	s = strings.TrimSpace(s)
	switch s {
	case "A":
		return SchemeA, true
	case "B":
		return SchemeB, true
	case "P":
		return SchemeP, true
	default:
		return "", false
	}
}

// Gender 是槽位/员工的性别约束，Any 表示不限。
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderAny    Gender = "Any"
)

// NormalizeGender 规整性别输入，空字符串等价于 Any。
func NormalizeGender(raw string) (Gender, bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToUpper(s) {
	case "", "ANY":
		return GenderAny, true
	case "M", "MALE":
		return GenderMale, true
	case "F", "FEMALE":
		return GenderFemale, true
	default:
		return "", false
	}
}

// Matches 判断员工性别 emp 是否满足槽位要求 g。
func (g Gender) Matches(emp Gender) bool {
	if g == GenderAny || g == "" {
		return true
	}
	return g == emp
}

// WeeklyHourCap 返回该 Scheme 在给定班次净工时下的每周工时上限（小时）。
// Scheme A/B 统一 44 小时；Scheme P 按班次时长分档（§4.3）。
func (s Scheme) WeeklyHourCap(shiftNetHours float64) float64 {
	switch s {
	case SchemeP:
		switch {
		case shiftNetHours >= 8:
			return 34.98
		case shiftNetHours >= 6:
			return 29.98
		case shiftNetHours >= 5:
			return 29.98 // 6 天制同档，由 ConsecutiveDaysCap 区分天数
		default:
			return 29.98
		}
	default:
		return 44.0
	}
}

// ConsecutiveDaysCap 返回该 Scheme（及 APGD-D10 标记）下允许的最长连续工作天数。
func (s Scheme) ConsecutiveDaysCap(apgdD10 bool) int {
	switch {
	case s == SchemeP:
		return 6
	case apgdD10:
		return 8
	default:
		return 12
	}
}

// MinRestHours 返回两次班次之间要求的最小休息小时数。
func (s Scheme) MinRestHours(apgdD10, sameDay bool) float64 {
	switch {
	case s == SchemeP && sameDay:
		return 1.0
	case apgdD10:
		return 8.0
	default:
		return 11.0
	}
}

// DailyHoursCap 返回单日工时上限（小时）。
func (s Scheme) DailyHoursCap() float64 {
	if s == SchemeP {
		return 9.0
	}
	return 14.0
}
