package model

import "time"

// MatchType 控制资质组的匹配语义。
type MatchType string

const (
	MatchAll MatchType = "ALL"
	MatchAny MatchType = "ANY"
)

// QualificationGroup 是一组资质代码，要求全部命中（ALL）或至少一项命中（ANY）。
type QualificationGroup struct {
	GroupID            string    `json:"group_id"`
	MatchType          MatchType `json:"match_type"`
	QualificationCodes []string  `json:"qualification_codes"`
}

// NormalizeQualificationGroups 把“扁平代码列表”形式规整为单个 ALL 组，
// 非扁平输入原样返回（规范 §3：一个扁平列表等价于一个 ALL 组）。
func NormalizeQualificationGroups(flat []string, groups []QualificationGroup) []QualificationGroup {
	if len(groups) > 0 {
		return groups
	}
	if len(flat) == 0 {
		return nil
	}
	return []QualificationGroup{{GroupID: "default", MatchType: MatchAll, QualificationCodes: flat}}
}

// Requirement 是规范 §3 Requirement 实体：一条需求描述了谁可以填、哪些日期、
// 接受哪些班次代码，以及对应的循环班表。
type Requirement struct {
	RequirementID       string               `json:"requirement_id"`
	Headcount           int                  `json:"headcount,omitempty"`
	WorkPattern         WorkPattern          `json:"work_pattern"`
	CoverageAnchor      Date                 `json:"coverage_anchor"`
	CoverageDays        []time.Weekday       `json:"coverage_days"`
	ShiftCodes          []string             `json:"shift_codes"`
	Schemes             []Scheme             `json:"schemes"`
	RankIDs             []string             `json:"rank_ids"`
	RankWasSingular     bool                 `json:"-"` // 保留输入是单数 rankId 还是复数 rankIds，供结果回显
	Gender              Gender               `json:"gender"`
	QualificationGroups []QualificationGroup `json:"qualification_groups,omitempty"`
	Whitelist           []string             `json:"whitelist,omitempty"`
	Blacklist           []string             `json:"blacklist,omitempty"`
	EnableAPGDD10       bool                 `json:"enable_apgd_d10,omitempty"`

	StrictAdherenceRatio *float64         `json:"strict_adherence_ratio,omitempty"`
	AutoRatio            *AutoRatioConfig `json:"auto_ratio,omitempty"`
}

// AutoRatioConfig 描述严格遵从率自动搜索的等差数列 {min, max, step}。
type AutoRatioConfig struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Candidates 枚举该配置生成的候选比例序列（含端点）。
func (c AutoRatioConfig) Candidates() []float64 {
	if c.Step <= 0 {
		return []float64{c.Min}
	}
	var out []float64
	for r := c.Min; r <= c.Max+1e-9; r += c.Step {
		out = append(out, round2(r))
	}
	return out
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// CoversDay 判断该需求在给定星期是否生效。空列表视为全周覆盖。
func (r Requirement) CoversDay(wd time.Weekday) bool {
	if len(r.CoverageDays) == 0 {
		return true
	}
	for _, d := range r.CoverageDays {
		if d == wd {
			return true
		}
	}
	return false
}

// AcceptsScheme 判断该需求是否接受给定 Scheme；空列表或含 "Any" 接受全部。
func (r Requirement) AcceptsScheme(s Scheme) bool {
	if len(r.Schemes) == 0 {
		return true
	}
	for _, sc := range r.Schemes {
		if sc == s || sc == "Any" || sc == "Global" {
			return true
		}
	}
	return false
}

// AcceptsRank 判断该需求是否接受给定军衔；空列表接受全部，匹配为 OR 语义。
func (r Requirement) AcceptsRank(rank string) bool {
	if len(r.RankIDs) == 0 {
		return true
	}
	for _, id := range r.RankIDs {
		if id == rank {
			return true
		}
	}
	return false
}

// OnWhitelist / OnBlacklist 检查员工是否出现在显式名单中。
func (r Requirement) OnWhitelist(empID string) bool { return contains(r.Whitelist, empID) }
func (r Requirement) OnBlacklist(empID string) bool { return contains(r.Blacklist, empID) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// RosteringBasis 是需求项的排班基准：demand_based（预处理器固定人数）或
// outcome_based（模板驱动，人数由结果反推）。
type RosteringBasis string

const (
	RosteringDemandBased  RosteringBasis = "demand_based"
	RosteringOutcomeBased RosteringBasis = "outcome_based"
)

// OffsetMode 决定轮转偏移如何分配。
type OffsetMode string

const (
	OffsetAuto            OffsetMode = "auto"
	OffsetOUOffsets       OffsetMode = "ou_offsets"
	OffsetSolverOptimized OffsetMode = "solver_optimized"
)

// DemandItem 把若干 Requirement 归组，携带排班基准与轮转偏移策略。
type DemandItem struct {
	DemandID                    string         `json:"demand_id"`
	Requirements                []Requirement  `json:"requirements"`
	RosteringBasis              RosteringBasis `json:"rostering_basis"`
	MinStaffThresholdPercentage float64        `json:"min_staff_threshold_percentage,omitempty"`
	OffsetMode                  OffsetMode     `json:"offset_mode"`
	OUOffsets                   map[string]int `json:"ou_offsets,omitempty"`
}
