// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"time"
)

// ShiftType 定义一个可复用的班次：代码、起止时刻（跨零点时 End 小于等于 Start）、
// 毛工时与午休扣除。
type ShiftType struct {
	Code       string  `json:"code"`       // 如 "D"、"N"、"O"
	StartTime  string  `json:"start_time"` // HH:MM
	EndTime    string  `json:"end_time"`   // HH:MM
	GrossHours float64 `json:"gross_hours"`
	LunchBreak float64 `json:"lunch_break"` // 小时
}

// CrossesMidnight 判断该班次是否跨越零点进入次日。
func (s ShiftType) CrossesMidnight() bool {
	start, end := s.parseClock()
	return end <= start
}

func (s ShiftType) parseClock() (startMin, endMin int) {
	return mustParseHHMM(s.StartTime), mustParseHHMM(s.EndTime)
}

func mustParseHHMM(hhmm string) int {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0
	}
	return h*60 + m
}

// Window 计算该班次在给定日历日期上的具体起止时间戳；跨零点时 End 落在次日。
func (s ShiftType) Window(date Date) (start, end time.Time) {
	startMin, endMin := s.parseClock()
	d := date.Time()
	start = d.Add(time.Duration(startMin) * time.Minute)
	if endMin <= startMin {
		end = d.AddDate(0, 0, 1).Add(time.Duration(endMin) * time.Minute)
	} else {
		end = d.Add(time.Duration(endMin) * time.Minute)
	}
	return start, end
}

// NetHours 返回扣除午休后的净工时（小时）。若未显式给出 GrossHours，
// 默认按 11 小时净工时处理（ICPMP 默认值约定）。
func (s ShiftType) NetHours() float64 {
	if s.GrossHours <= 0 {
		return 11.0
	}
	return s.GrossHours - s.LunchBreak
}

// WorkPattern 是长度为 L 的循环班表，字母表为班次代码或 'O'（休息）。
type WorkPattern []string

// Length 返回循环长度 L。
func (p WorkPattern) Length() int { return len(p) }

// WorkDaysPerCycle 返回一个周期内的工作日数（非 'O' 的位置数）。
func (p WorkPattern) WorkDaysPerCycle() int {
	n := 0
	for _, c := range p {
		if c != "O" {
			n++
		}
	}
	return n
}

// PositionFor 返回在给定 offset 下、相对 anchor 偏移 daysSinceAnchor 天
// 所对应的循环内位置：(daysSinceAnchor + offset) mod L。
func (p WorkPattern) PositionFor(daysSinceAnchor, offset int) int {
	l := p.Length()
	if l == 0 {
		return 0
	}
	pos := (daysSinceAnchor + offset) % l
	if pos < 0 {
		pos += l
	}
	return pos
}

// CodeAt 返回给定位置对应的班次代码（或 "O"）。
func (p WorkPattern) CodeAt(daysSinceAnchor, offset int) string {
	return p[p.PositionFor(daysSinceAnchor, offset)]
}

// IsWorkDay 判断给定位置是否为工作日（非 'O'）。
func (p WorkPattern) IsWorkDay(daysSinceAnchor, offset int) bool {
	return p.CodeAt(daysSinceAnchor, offset) != "O"
}

// LongestConsecutiveRun 返回循环班表中最长的连续工作日游程，按环形
// （wrap-around）计算——ICPMP 用它判断是否需要为轮转灵活性额外配置人手。
func (p WorkPattern) LongestConsecutiveRun() int {
	l := p.Length()
	if l == 0 {
		return 0
	}
	allWork := true
	for _, c := range p {
		if c == "O" {
			allWork = false
			break
		}
	}
	if allWork {
		return l
	}

	longest, current := 0, 0
	// 环形扫描两圈以正确统计跨越数组首尾的游程。
	for i := 0; i < 2*l; i++ {
		if p[i%l] != "O" {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	if longest > l {
		longest = l
	}
	return longest
}
