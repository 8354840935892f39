// Package model 定义排班引擎的核心数据模型。
//
// 工时相关字段内部一律以整数分钟（定点数）存储，只在结果文档的 JSON 边界换算为
// 浮点小时，换算逻辑见 pkg/hours。
package model

import (
	"fmt"
	"time"
)

const isoDate = "2006-01-02"

// JSONMap 是结果文档 meta 字段使用的弱类型 map。
type JSONMap map[string]interface{}

// Minutes 是内部工时定点表示，单位分钟。
type Minutes int

// Hours 把分钟换算为浮点小时，仅在结果文档边界使用。
func (m Minutes) Hours() float64 { return float64(m) / 60.0 }

// MinutesFromHours 把浮点小时换算为分钟，四舍五入到最近分钟。
func MinutesFromHours(h float64) Minutes { return Minutes(int(h*60.0 + 0.5)) }

// Date 是排班日历日期，文档边界始终以 YYYY-MM-DD 字符串出现。
type Date struct {
	t time.Time
}

// ParseDate 解析 YYYY-MM-DD 字符串。
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(isoDate, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("无效日期 %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// MustDate 解析日期，失败时 panic；仅用于测试与常量构造。
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String 返回 YYYY-MM-DD 形式。
func (d Date) String() string { return d.t.Format(isoDate) }

// Time 返回对应的 UTC 午夜时间点。
func (d Date) Time() time.Time { return d.t }

// IsZero 判断是否为零值日期。
func (d Date) IsZero() bool { return d.t.IsZero() }

// AddDays 返回偏移 n 天后的日期。
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Before 日期先后比较。
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After 日期先后比较。
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal 日期相等比较。
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// Weekday 返回星期几。
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// DaysSince 返回 d 相对 anchor 的天数差（可为负）。
func (d Date) DaysSince(anchor Date) int {
	return int(d.t.Sub(anchor.t).Hours() / 24)
}

// DaysInMonth 返回 d 所在月份的天数。
func (d Date) DaysInMonth() int {
	return time.Date(d.t.Year(), d.t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthKey 返回 YYYY-MM 形式，用于按月分组。
func (d Date) MonthKey() string { return d.t.Format("2006-01") }

// WeekStart 返回 d 所在 ISO 周（周一起）的周一日期。
func (d Date) WeekStart() Date {
	wd := int(d.t.Weekday())
	if wd == 0 {
		wd = 7 // 周日记为第7天
	}
	return Date{t: d.t.AddDate(0, 0, -(wd - 1))}
}

// DateRange 是一个闭区间 [Start, End]。
type DateRange struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// Days 枚举区间内的每一天，含端点。
func (r DateRange) Days() []Date {
	var out []Date
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// Contains 判断日期是否落在区间内。
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}
