// Package constraint 定义约束接口与求解上下文。约束模块在启动时按
// constraint_list[] 显式注册（见 builtin.RegisterActivated），没有运行期
// 目录扫描或插件加载。
package constraint

import (
	"time"

	"github.com/paiban/engine/pkg/model"
)

// ID 是约束模块标识，对应规范中的 C1、C2/C6、C_qual 等编号。
type ID string

const (
	IDMaxHoursPerDay       ID = "C1"
	IDWeeklyHourCap        ID = "C2_C6"
	IDConsecutiveDaysCap   ID = "C3"
	IDMinRestBetweenShifts ID = "C4_C7"
	IDPatternAdherence     ID = "C5"
	IDHeadcountCoverage    ID = "C9"
	IDGenderMatch          ID = "C11"
	IDAPGDD10Override      ID = "C17_C19"
	IDQualification        ID = "C_QUAL"
	IDRotationOffset       ID = "C_OFFSET"
	IDAvailability         ID = "C_AVAILABILITY"
	IDStrictAdherence      ID = "C_STRICT_ADHERENCE"
)

// Category 约束类别：硬约束必须满足，软约束计入惩罚分但不阻止指派。
type Category string

const (
	CategoryHard Category = "hard"
	CategorySoft Category = "soft"
)

// ViolationDetail 是一次约束违反的结构化记录。
type ViolationDetail struct {
	ConstraintID ID          `json:"constraint_id"`
	EmployeeID   string      `json:"employee_id,omitempty"`
	SlotID       string      `json:"slot_id,omitempty"`
	Date         model.Date  `json:"date,omitempty"`
	Message      string      `json:"message"`
	Severity     string      `json:"severity"`
	Penalty      int         `json:"penalty"`
}

// Constraint 是一个可插拔约束模块。
type Constraint interface {
	ID() ID
	Category() Category
	Weight() int

	// CanAssign 判断把 emp 指派到 slot 是否违反本约束（硬约束的短路检查）。
	CanAssign(ctx *Context, slot model.SlotIdx, emp model.EmpIdx) (bool, string)

	// Evaluate 对当前完整解做整体评估，返回是否有效、累计惩罚与违规详情。
	Evaluate(ctx *Context) (valid bool, penalty int, details []ViolationDetail)
}

// Assignment 是求解过程中的内部指派记录，用 Arena 句柄而非字符串 ID 引用。
type Assignment struct {
	Slot   model.SlotIdx
	Emp    model.EmpIdx
	Status model.AssignmentStatus
}

// EmployeeBaseline 是增量重排中，员工在当前求解窗口之前已经锁定的统计
// 基线（由 pkg/incremental 从 cutoff_date 之前的历史指派投影而来）。约束
// 模块把它当作窗口开始前“已经发生”的事实，叠加到窗口内重新计算的统计上。
type EmployeeBaseline struct {
	// WeeklyHours 按 ISO 周一 Date.String() 索引，记录该周在窗口之前已
	// 锁定的净工时，供周工时上限约束与窗口内新增工时相加。
	WeeklyHours map[string]float64
	// ConsecutiveStreak 是截至 LastWorkDate 的连续工作天数。
	ConsecutiveStreak int
	// LastWorkDate 与 HasLastWorkDate 标记基线中最后一次锁定上班的日期。
	LastWorkDate    model.Date
	HasLastWorkDate bool
	// LastShiftEnd 是最后一次锁定班次的结束时刻，供最小休息间隔约束跨
	// 窗口边界核算间隔。
	LastShiftEnd time.Time
}

// Context 是约束评估所需的全部状态：Arena、当前解、索引缓存。
type Context struct {
	Arena *model.Arena

	Assignments []Assignment

	assignmentsByEmp  map[model.EmpIdx][]Assignment
	assignmentsBySlot map[model.SlotIdx]Assignment

	Config map[string]interface{}

	// Baseline 是增量重排的窗口前统计基线，按 Arena 句柄索引；非增量求解
	// 留空，各约束按零值对待（即没有基线）。
	Baseline map[model.EmpIdx]EmployeeBaseline
}

// NewContext 创建一个绑定到给定 Arena 的空求解上下文。
func NewContext(arena *model.Arena) *Context {
	return &Context{
		Arena:             arena,
		assignmentsByEmp:  make(map[model.EmpIdx][]Assignment),
		assignmentsBySlot: make(map[model.SlotIdx]Assignment),
		Config:            make(map[string]interface{}),
	}
}

// Assign 记录一次指派并维护索引。
func (c *Context) Assign(slot model.SlotIdx, emp model.EmpIdx) {
	a := Assignment{Slot: slot, Emp: emp, Status: model.StatusAssigned}
	c.Assignments = append(c.Assignments, a)
	c.assignmentsByEmp[emp] = append(c.assignmentsByEmp[emp], a)
	c.assignmentsBySlot[slot] = a
}

// Unassign 撤销给定槽位的指派（局部搜索移动的一部分）。
func (c *Context) Unassign(slot model.SlotIdx) {
	a, ok := c.assignmentsBySlot[slot]
	if !ok {
		return
	}
	delete(c.assignmentsBySlot, slot)
	list := c.assignmentsByEmp[a.Emp]
	for i, x := range list {
		if x.Slot == slot {
			c.assignmentsByEmp[a.Emp] = append(list[:i], list[i+1:]...)
			break
		}
	}
	for i, x := range c.Assignments {
		if x.Slot == slot {
			c.Assignments = append(c.Assignments[:i], c.Assignments[i+1:]...)
			break
		}
	}
}

// EmployeeAssignments 返回员工的全部指派（不含未指派槽位）。
func (c *Context) EmployeeAssignments(emp model.EmpIdx) []Assignment {
	return c.assignmentsByEmp[emp]
}

// AssignmentForSlot 返回槽位当前的指派（若已指派）。
func (c *Context) AssignmentForSlot(slot model.SlotIdx) (Assignment, bool) {
	a, ok := c.assignmentsBySlot[slot]
	return a, ok
}

// EmployeeHoursOnDate 返回员工在给定日期已累计的净工时（小时）。
func (c *Context) EmployeeHoursOnDate(emp model.EmpIdx, d model.Date) float64 {
	var total float64
	for _, a := range c.assignmentsByEmp[emp] {
		slot := c.Arena.Slot(a.Slot)
		if slot.Date.Equal(d) {
			total += slot.End.Sub(slot.Start).Hours()
		}
	}
	return total
}

// BaselineWeeklyHours 返回员工在给定周（以周一为起点）的窗口前锁定工时；
// 没有增量基线时恒为 0。
func (c *Context) BaselineWeeklyHours(emp model.EmpIdx, weekStart model.Date) float64 {
	return c.BaselineWeeklyHoursByWeekKey(emp, weekStart.String())
}

// BaselineWeeklyHoursByWeekKey 按 WeekStart().String() 键直接查询，供已经
// 以该键分组统计的调用方（如 WeeklyHourCap.Evaluate）复用，避免往返解析日期。
func (c *Context) BaselineWeeklyHoursByWeekKey(emp model.EmpIdx, weekKey string) float64 {
	b, ok := c.Baseline[emp]
	if !ok || b.WeeklyHours == nil {
		return 0
	}
	return b.WeeklyHours[weekKey]
}

// BaselineLastShiftEnd 返回员工窗口前最后一次锁定班次的结束时刻。
func (c *Context) BaselineLastShiftEnd(emp model.EmpIdx) (time.Time, bool) {
	b, ok := c.Baseline[emp]
	if !ok || b.LastShiftEnd.IsZero() {
		return time.Time{}, false
	}
	return b.LastShiftEnd, true
}

// baselineConsecutiveBefore 返回基线中止于 target 前一天的连续工作天数；
// 基线最后一次上班日期不是 target 的前一天时视为不连续，返回 0。
func (c *Context) baselineConsecutiveBefore(emp model.EmpIdx, target model.Date) int {
	b, ok := c.Baseline[emp]
	if !ok || !b.HasLastWorkDate {
		return 0
	}
	if !b.LastWorkDate.AddDays(1).Equal(target) {
		return 0
	}
	return b.ConsecutiveStreak
}

// EmployeeConsecutiveDays 计算如果在 target 这天也被指派工作，员工将形成的
// 连续工作天数（双向扫描，镜像教师仓库的 GetEmployeeConsecutiveDays 做法）。
// 向前扫描以增量基线的连续天数为起点，使窗口边界两侧的连续工作天数连续核算。
func (c *Context) EmployeeConsecutiveDays(emp model.EmpIdx, target model.Date) int {
	dates := make(map[string]bool)
	for _, a := range c.assignmentsByEmp[emp] {
		slot := c.Arena.Slot(a.Slot)
		dates[slot.Date.String()] = true
	}

	before := c.baselineConsecutiveBefore(emp, target)
	for d := target.AddDays(-1); dates[d.String()]; d = d.AddDays(-1) {
		before++
		if before > 60 {
			break
		}
	}
	after := 0
	for d := target.AddDays(1); dates[d.String()]; d = d.AddDays(1) {
		after++
		if after > 60 {
			break
		}
	}
	return before + 1 + after
}

// Result 是整体约束评估结果。
type Result struct {
	IsValid        bool
	TotalPenalty   int
	HardViolations []ViolationDetail
	SoftViolations []ViolationDetail
	Score          float64
}

// CalculateScore 把惩罚值换算为 0-100 的满足度分数。
func (r *Result) CalculateScore(maxPenalty int) {
	if maxPenalty == 0 {
		r.Score = 100.0
		return
	}
	r.Score = 100.0 * float64(maxPenalty-r.TotalPenalty) / float64(maxPenalty)
	if r.Score < 0 {
		r.Score = 0
	}
}
