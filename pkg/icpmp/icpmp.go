// Package icpmp 实现求解前的容量与模式匹配预处理器（Iterative Capacity
// and Pattern Matching Planner）：在约束求解开始之前，为每条需求决定需要
// 多少员工、挑选哪些员工、以及分配怎样的轮转偏移。
package icpmp

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/paiban/engine/pkg/enginerr"
	"github.com/paiban/engine/pkg/feasibility"
	"github.com/paiban/engine/pkg/logger"
	"github.com/paiban/engine/pkg/model"
)

// Plan 是针对单条需求的预处理结果。
type Plan struct {
	RequirementID      string         `json:"requirement_id"`
	DemandID           string         `json:"demand_id"`
	SelectedEmployeeIDs []string      `json:"selected_employee_ids"`
	OffsetsByEmployee   map[string]int `json:"offsets_by_employee,omitempty"`
	EstimatedEmployees  int           `json:"estimated_employees"`
	Warnings            []string      `json:"warnings,omitempty"`
	FallbackTriggered   bool          `json:"fallback_triggered"`
}

// Trace 汇总本次求解运行中全部需求的预处理计划，写入结果文档的求解运行
// 元数据（solverRun.icpmp）。
type Trace struct {
	Plans             []Plan `json:"plans"`
	FallbackTriggered bool   `json:"fallback_triggered"`
}

var componentLogger = logger.NewComponentLogger("icpmp")

// Preprocess 对 problem 的全部需求逐条运行 ICPMP 算法，返回聚合跟踪记录。
// 循环班表在调度约束层面不可行时返回 PatternInfeasible 错误，短路整个求解。
func Preprocess(problem model.Problem) (Trace, error) {
	trace := Trace{}

	for _, ref := range problem.AllRequirements() {
		plan, err := preprocessRequirement(problem, ref.Demand, *ref.Requirement)
		if err != nil {
			return trace, err
		}
		if plan.FallbackTriggered {
			trace.FallbackTriggered = true
		}
		trace.Plans = append(trace.Plans, plan)
	}

	return trace, nil
}

func preprocessRequirement(problem model.Problem, demand model.DemandItem, req model.Requirement) (Plan, error) {
	plan := Plan{RequirementID: req.RequirementID, DemandID: demand.DemandID, OffsetsByEmployee: map[string]int{}}

	cycleLength := req.WorkPattern.Length()
	workDaysPerCycle := req.WorkPattern.WorkDaysPerCycle()
	if cycleLength == 0 || workDaysPerCycle == 0 {
		// 无循环班表（纯 demand-based，直接按班次天数计算）——每个覆盖日都是工作日。
		cycleLength, workDaysPerCycle = 1, 1
	}

	headcount := req.Headcount
	if headcount <= 0 {
		headcount = 1
	}

	// 1-2. 基线人数。
	baseline := int(math.Ceil(float64(headcount*cycleLength) / float64(workDaysPerCycle)))

	// 3-5. 周工时可行性系数、连续工作日校验与缓冲，委托给独立探针以便与
	// 对外的 validate_pattern 共用同一套判定逻辑。
	apgdD10 := req.EnableAPGDD10
	scheme := dominantScheme(req)
	shiftNetHours := representativeShiftNetHours(problem, req)
	probe := feasibility.Probe(req.WorkPattern, scheme, shiftNetHours, apgdD10)
	if !probe.Feasible {
		details := ""
		if len(probe.SuggestedAlternatives) > 0 {
			details = strings.Join(probe.SuggestedAlternatives, "；")
		}
		return Plan{}, enginerr.PatternInfeasible(
			fmt.Sprintf("需求 %s 的循环班表最长连续工作 %d 天，超过 %s 方案上限 %d 天",
				req.RequirementID, probe.LongestConsecutiveRun, scheme, probe.ConsecutiveDaysCap)).
			WithField("requirement_id", req.RequirementID).
			WithField("longest_run", probe.LongestConsecutiveRun).
			WithField("cap", probe.ConsecutiveDaysCap).
			WithDetails(details)
	}
	scaled := int(math.Ceil(float64(baseline) * probe.EmployeeScaleFactor))
	if probe.LongestConsecutiveRun >= 6 {
		scaled++ // 为轮转灵活性预留一名额外员工
	}
	plan.EstimatedEmployees = scaled

	// 6. 候选员工筛选，按 scheme 分桶 round-robin 维持多方案占比均衡。
	pool := eligibleEmployees(problem, req)
	selected := selectRoundRobin(pool, req.Schemes, scaled)
	for _, e := range selected {
		plan.SelectedEmployeeIDs = append(plan.SelectedEmployeeIDs, e.EmployeeID)
	}

	// 7. 轮转偏移分配。
	offsets, warnings, err := assignOffsets(demand.OffsetMode, selected, cycleLength, demand.OUOffsets)
	if err != nil {
		return Plan{}, err
	}
	plan.OffsetsByEmployee = offsets
	plan.Warnings = append(plan.Warnings, warnings...)

	// 8. 人力不足与 fallback。
	if len(selected) < scaled {
		shortfall := scaled - len(selected)
		msg := fmt.Sprintf("需求 %s 候选员工不足：需要 %d 人，实际选中 %d 人（缺 %d）",
			req.RequirementID, scaled, len(selected), shortfall)
		plan.Warnings = append(plan.Warnings, msg)
		componentLogger.ConstraintViolation("icpmp_insufficient_employees", msg)

		if demand.RosteringBasis == model.RosteringDemandBased && problem.SolverConfig.FallbackToOutcomeBased {
			plan.FallbackTriggered = true
		}
	}

	return plan, nil
}

// representativeShiftNetHours 取需求接受的班次代码中第一个已知班次的净
// 工时；若没有可解析的班次，退回 ShiftType 的默认净工时（11 小时）。
func representativeShiftNetHours(problem model.Problem, req model.Requirement) float64 {
	for _, code := range req.ShiftCodes {
		if shift, ok := problem.ShiftByCode(code); ok {
			return shift.NetHours()
		}
	}
	return model.ShiftType{}.NetHours()
}

// dominantScheme 返回需求接受方案集合中用于容量估算的代表方案：含 P 时
// 按 P 的更紧工时上限估算（更保守），否则取第一个方案，空集合按 A 处理。
func dominantScheme(req model.Requirement) model.Scheme {
	for _, s := range req.Schemes {
		if s == model.SchemeP {
			return model.SchemeP
		}
	}
	if len(req.Schemes) > 0 {
		return req.Schemes[0]
	}
	return model.SchemeA
}

// eligibleEmployees 按军衔、方案、性别、名单过滤候选员工池；资质以需求
// 锚定日期做粗筛，具体槽位日期的校验留给约束模型。
func eligibleEmployees(problem model.Problem, req model.Requirement) []model.Employee {
	var out []model.Employee
	for _, e := range problem.Employees {
		if !req.AcceptsScheme(e.Scheme) {
			continue
		}
		if !req.AcceptsRank(e.Rank) {
			continue
		}
		if req.OnBlacklist(e.EmployeeID) {
			continue
		}
		if !req.Gender.Matches(e.Gender) {
			continue
		}
		eligible := true
		for _, g := range req.QualificationGroups {
			if !e.SatisfiesGroup(g, req.CoverageAnchor) {
				eligible = false
				break
			}
		}
		if !eligible {
			continue
		}
		out = append(out, e)
	}
	return out
}

// selectRoundRobin 从候选池中挑选最多 want 名员工；当需求接受 2 个及以上
// 方案时，按方案分桶轮流挑选以维持方案占比均衡，否则按 EmployeeID 排序
// 保证确定性。
func selectRoundRobin(pool []model.Employee, schemes []model.Scheme, want int) []model.Employee {
	if want <= 0 || len(pool) == 0 {
		return nil
	}

	sorted := make([]model.Employee, len(pool))
	copy(sorted, pool)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].EmployeeID < sorted[j].EmployeeID })

	if len(schemes) < 2 {
		if want > len(sorted) {
			want = len(sorted)
		}
		return sorted[:want]
	}

	buckets := make(map[model.Scheme][]model.Employee)
	var order []model.Scheme
	for _, e := range sorted {
		if _, seen := buckets[e.Scheme]; !seen {
			order = append(order, e.Scheme)
		}
		buckets[e.Scheme] = append(buckets[e.Scheme], e)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var selected []model.Employee
	for len(selected) < want {
		progressed := false
		for _, s := range order {
			if len(selected) >= want {
				break
			}
			if len(buckets[s]) == 0 {
				continue
			}
			selected = append(selected, buckets[s][0])
			buckets[s] = buckets[s][1:]
			progressed = true
		}
		if !progressed {
			break // 所有方案桶均已耗尽
		}
	}
	return selected
}

// assignOffsets 按 OffsetMode 为已选员工分配轮转偏移。
func assignOffsets(mode model.OffsetMode, selected []model.Employee, cycleLength int, ouOffsets map[string]int) (map[string]int, []string, error) {
	offsets := make(map[string]int, len(selected))
	var warnings []string

	if cycleLength <= 0 {
		cycleLength = 1
	}

	switch mode {
	case model.OffsetOUOffsets:
		for _, e := range selected {
			off, ok := ouOffsets[e.OrganizationalUnit]
			if !ok {
				warnings = append(warnings, fmt.Sprintf("员工 %s 所属单位 %q 未在 ou_offsets 表中声明，默认偏移 0", e.EmployeeID, e.OrganizationalUnit))
				off = 0
			}
			if off < 0 || off >= cycleLength {
				return nil, nil, enginerr.InvalidInput("ou_offsets", fmt.Sprintf("单位 %q 的偏移 %d 超出 [0, %d) 范围", e.OrganizationalUnit, off, cycleLength))
			}
			offsets[e.EmployeeID] = off
		}
	case model.OffsetSolverOptimized:
		// 偏移留给求解器作为决策变量，这里不预先固定。
	default: // OffsetAuto，以及未设置时的默认值
		for i, e := range selected {
			offsets[e.EmployeeID] = i % cycleLength
		}
	}

	return offsets, warnings, nil
}
