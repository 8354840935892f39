package model

import "time"

// Slot 是排班单元格构建器展开出的一个待填充班次实例：某个需求在某一天
// 对应的一个工作单元（规范 §3 Slot 实体 / §4.2）。
type Slot struct {
	SlotID        string    `json:"slot_id"`
	DemandID      string    `json:"demand_id"`
	RequirementID string    `json:"requirement_id"`
	Date          Date      `json:"date"`
	ShiftCode     string    `json:"shift_code"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`

	RankIDs             []string             `json:"rank_ids"`
	Gender              Gender               `json:"gender"`
	Schemes             []Scheme             `json:"schemes"`
	QualificationGroups []QualificationGroup `json:"qualification_groups,omitempty"`
	Whitelist           []string             `json:"whitelist,omitempty"`
	Blacklist           []string             `json:"blacklist,omitempty"`

	// Position 是该槽位在所属循环班表中的位置（anchor 起算），PatternDay
	// 是同一位置对应的原始 pattern 索引（offset=0 时两者相同）。
	Position               int `json:"position"`
	PatternDay             int `json:"pattern_day"`
	RotationOffsetForSlot  int `json:"rotation_offset_for_slot"`

	EnableAPGDD10 bool `json:"enable_apgd_d10,omitempty"`
}

// Overlaps 判断两个槽位的时间窗是否存在重叠。
func (s Slot) Overlaps(o Slot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// GapHours 返回本槽位结束到另一槽位开始之间的小时数；若另一槽位先结束
// 或存在重叠，返回负值或零。
func (s Slot) GapHours(next Slot) float64 {
	return next.Start.Sub(s.End).Hours()
}

// AcceptsEmployee 做槽位层面与员工属性相关的快速筛选（军衔、性别、scheme、
// 黑白名单），不含资质时效与可用性检查——那些由调用方按日期另行核验。
func (s Slot) AcceptsEmployee(e Employee) bool {
	if s.OnBlacklist(e.EmployeeID) {
		return false
	}
	if len(s.Whitelist) > 0 && !s.OnWhitelist(e.EmployeeID) {
		return false
	}
	if !s.Gender.Matches(e.Gender) {
		return false
	}
	if len(s.Schemes) > 0 {
		accepted := false
		for _, sc := range s.Schemes {
			if sc == e.Scheme || sc == "Any" || sc == "Global" {
				accepted = true
				break
			}
		}
		if !accepted {
			return false
		}
	}
	if len(s.RankIDs) > 0 {
		accepted := false
		for _, r := range s.RankIDs {
			if r == e.Rank {
				accepted = true
				break
			}
		}
		if !accepted {
			return false
		}
	}
	return true
}

// OnWhitelist / OnBlacklist 检查员工是否出现在该槽位的显式名单中。
func (s Slot) OnWhitelist(empID string) bool { return contains(s.Whitelist, empID) }
func (s Slot) OnBlacklist(empID string) bool { return contains(s.Blacklist, empID) }
