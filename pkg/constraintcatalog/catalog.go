// Package constraintcatalog 提供一份静态的约束模板目录：每个内置约束
// 模块的 id、显示名、类别、说明与可配置参数说明。这是一份纯数据目录，不驱动
// 任何运行期装配决定——`constraint_list[]` 才是实际激活哪些约束的来源
// （见 pkg/constraint/builtin.RegisterActivated）；目前仓库内没有其他包
// 引用本目录。
package constraintcatalog

import "github.com/paiban/engine/pkg/constraint"

// Param 描述约束模块的一个可配置参数。
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int / float / string / bool
	Description string `json:"description"`
	Default     string `json:"default"`
}

// Template 是目录中一条约束模块的完整说明。
type Template struct {
	ID          constraint.ID       `json:"id"`
	DisplayName string              `json:"display_name"`
	Category    constraint.Category `json:"category"`
	Description string              `json:"description"`
	Params      []Param             `json:"params,omitempty"`
}

// Catalog 是内置约束模块的静态目录，与 pkg/constraint/builtin.
// RegisterDefaultConstraints 注册的模块一一对应。
var Catalog = []Template{
	{
		ID:          constraint.IDMaxHoursPerDay,
		DisplayName: "每日最大工时",
		Category:    constraint.CategoryHard,
		Description: "限制员工单日工时不超过方案规定的上限，超过则该指派不可行。",
	},
	{
		ID:          constraint.IDWeeklyHourCap,
		DisplayName: "每周工时上限",
		Category:    constraint.CategoryHard,
		Description: "按 ISO 周（周一起）累计工时，超过方案周上限（含加班余量）则指派不可行；增量重排时累计基线中的窗口前工时。",
		Params: []Param{
			{Name: "max_overtime_hours", Type: "float", Description: "周上限之上额外允许的加班小时数", Default: "12.0"},
		},
	},
	{
		ID:          constraint.IDConsecutiveDaysCap,
		DisplayName: "最大连续工作天数",
		Category:    constraint.CategoryHard,
		Description: "限制连续工作天数不超过方案上限（APGD-D10 标记可放宽上限）；增量重排时以窗口前连续天数基线为起点续算。",
	},
	{
		ID:          constraint.IDMinRestBetweenShifts,
		DisplayName: "班次间最小休息时间",
		Category:    constraint.CategoryHard,
		Description: "确保相邻两个班次（含跨增量窗口边界）之间的间隔不少于方案规定的最小休息小时数。",
	},
	{
		ID:          constraint.IDPatternAdherence,
		DisplayName: "循环班表遵从度",
		Category:    constraint.CategorySoft,
		Description: "记录偏离循环班表原定轮转偏移的指派（换班/顶班），偏离计入软约束罚分，不阻止求解器按需调整。",
	},
	{
		ID:          constraint.IDHeadcountCoverage,
		DisplayName: "岗位人数覆盖",
		Category:    constraint.CategorySoft,
		Description: "按需求的 headcount 统计未填补的槽位，每个未填补槽位记为一次软约束违反，用于报告缺口。",
	},
	{
		ID:          constraint.IDGenderMatch,
		DisplayName: "性别匹配",
		Category:    constraint.CategoryHard,
		Description: "按需求声明的性别限制（Any/Male/Female）过滤候选员工。",
	},
	{
		ID:          constraint.IDAPGDD10Override,
		DisplayName: "APGD-D10 豁免覆盖",
		Category:    constraint.CategoryHard,
		Description: "对标记 APGD-D10 的员工按 monthly_hour_limits 表核验月度总工时与加班上限，超出记为违反。",
	},
	{
		ID:          constraint.IDQualification,
		DisplayName: "资质匹配",
		Category:    constraint.CategoryHard,
		Description: "确保员工在槽位日期满足需求声明的全部资质组要求。",
	},
	{
		ID:          constraint.IDRotationOffset,
		DisplayName: "轮转偏移锁定",
		Category:    constraint.CategoryHard,
		Description: "员工的轮转偏移（由 ICPMP 预先分配或在员工画像上固定）限定其只能落在对应偏移的槽位上。",
	},
	{
		ID:          constraint.IDAvailability,
		DisplayName: "可用性",
		Category:    constraint.CategoryHard,
		Description: "排除员工声明的不可用区间（请假、长期休假等）覆盖的槽位日期。",
	},
	{
		ID:          constraint.IDStrictAdherence,
		DisplayName: "严格遵从率候选",
		Category:    constraint.CategoryHard,
		Description: "在严格遵从率自动搜索的每个候选比例下，要求每条需求至少该比例的槽位被填补，否则判为不可行。",
		Params: []Param{
			{Name: "ratio", Type: "float", Description: "当前候选严格遵从率，[0,1]", Default: "1.0"},
		},
	},
}

// ByID 返回目录中指定 id 的模板；未找到时第二个返回值为 false。
func ByID(id constraint.ID) (Template, bool) {
	for _, t := range Catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
