// Package resultbuilder 把求解管线的内部产物（Arena、约束上下文、ICPMP
// 轨迹、CP 求解状态）组装为对外的规范结果文档 model.Result。
package resultbuilder

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/paiban/engine/internal/metrics"
	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/cpsolver"
	"github.com/paiban/engine/pkg/fairness"
	"github.com/paiban/engine/pkg/hours"
	"github.com/paiban/engine/pkg/icpmp"
	"github.com/paiban/engine/pkg/model"
)

// Input 汇聚组装结果文档所需的全部上游产物。
type Input struct {
	Problem           model.Problem
	Arena             *model.Arena
	Context           *constraint.Context
	ConstraintResult  *constraint.Result
	CPStatus          cpsolver.Status
	ICPMP             icpmp.Trace
	ElapsedMillis     int64
	UsedStrictRatio    float64
	RatioTrace         []model.RatioSearchEntry
	Workers            int
	FallbackToOutcome bool
	Cancelled          bool
	// LockedAssignments 是增量重排中 cutoff_date 之前原样保留的历史指派，
	// 合并进最终结果文档后参与月度工时与连续天数汇总。
	LockedAssignments []model.Assignment
	// RunID 标识本次求解运行，用于把公平性/覆盖率仪表值关联回具体运行
	// （internal/metrics 的 run_id 标签）。留空时不写这些仪表值。
	RunID string
}

// Build 组装最终的 model.Result 文档。
func Build(in Input) *model.Result {
	assignments, unmet := buildAssignments(in)
	assignments = mergeLocked(assignments, in.LockedAssignments)
	attachHours(in, assignments)
	rosters := buildRosters(in, assignments)
	quality := buildQuality(in, assignments, rosters)

	return &model.Result{
		// PlanningReference 不取自输入文档（Problem 不携带关联字段），
		// 而是每次求解生成一个新的 UUID，供调用方在日志与结果文档之间
		// 建立关联，沿用教师 pkg/model.BaseModel 为每条记录分配 UUID 的惯例。
		Meta:   model.ResultMeta{SchemaVersion: in.Problem.SchemaVersion, PlanningReference: uuid.NewString()},
		Status: statusFor(in, len(unmet)),
		Assignments: assignments,
		Employees:   rosters,
		Solver: model.SolverRunMeta{
			ElapsedMillis:     in.ElapsedMillis,
			UsedStrictRatio:    in.UsedStrictRatio,
			RatioSearchTrace:   in.RatioTrace,
			ICPMP:              icpmpSummary(in.ICPMP),
			ParallelWorkers:    in.Workers,
			FallbackToOutcome: in.FallbackToOutcome,
		},
		Quality:     quality,
		UnmetDemand: unmet,
	}
}

// statusFor 把 CP 求解器内部状态换算为对外的终态分类（规范 §7/§8）。
func statusFor(in Input, unmetCount int) model.SolveStatus {
	if in.Cancelled {
		return model.SolveStatusCancelled
	}
	switch in.CPStatus {
	case cpsolver.StatusInfeasible:
		return model.SolveStatusInfeasible
	case cpsolver.StatusUnknown:
		return model.SolveStatusTimeLimitExceeded
	case cpsolver.StatusOptimal:
		if unmetCount > 0 {
			return model.SolveStatusPartial
		}
		return model.SolveStatusOK
	default: // FEASIBLE
		if unmetCount > 0 {
			return model.SolveStatusPartial
		}
		return model.SolveStatusOK
	}
}

// buildAssignments 把求解器的内部 slot/emp 句柄指派换算为对外的 Assignment
// 记录；未填补的槽位不产生 Assignment，而是计入未满足需求清单。
func buildAssignments(in Input) ([]model.Assignment, []model.UnmetDemandItem) {
	var assignments []model.Assignment
	var unmet []model.UnmetDemandItem

	for idx := range in.Arena.Slots {
		slotIdx := model.SlotIdx(idx)
		slot := in.Arena.Slot(slotIdx)

		a, ok := in.Context.AssignmentForSlot(slotIdx)
		if !ok {
			unmet = append(unmet, model.UnmetDemandItem{
				DemandID:      slot.DemandID,
				RequirementID: slot.RequirementID,
				Date:          slot.Date,
				ShiftCode:     slot.ShiftCode,
				ShortBy:       1,
				Reason:        "未找到满足全部硬约束的候选员工",
			})
			continue
		}

		emp := in.Arena.Employee(a.Emp)
		assignments = append(assignments, model.Assignment{
			AssignmentID:  fmt.Sprintf("%s_%s", slot.SlotID, emp.EmployeeID),
			SlotID:        slot.SlotID,
			RequirementID: slot.RequirementID,
			EmployeeID:    emp.EmployeeID,
			Date:          slot.Date,
			ShiftCode:     slot.ShiftCode,
			Start:         slot.Start,
			End:           slot.End,
			Status:        model.StatusAssigned,
			// Hours 留待 attachHours 按月核算方法填充，这里先不填，避免
			// 和真正的核算结果不一致。
		})
	}

	sort.Slice(assignments, func(i, j int) bool {
		if !assignments[i].Date.Equal(assignments[j].Date) {
			return assignments[i].Date.Before(assignments[j].Date)
		}
		return assignments[i].EmployeeID < assignments[j].EmployeeID
	})
	sort.Slice(unmet, func(i, j int) bool {
		if !unmet[i].Date.Equal(unmet[j].Date) {
			return unmet[i].Date.Before(unmet[j].Date)
		}
		return unmet[i].RequirementID < unmet[j].RequirementID
	})

	return assignments, unmet
}

// attachHours 按员工、按月分组非锁定指派，用 pkg/hours 核算每一天的工时
// 拆分并写回对应 Assignment.Hours，使 §8 invariant 4（normal+overtime+
// rest_day_pay == gross-lunch）在每条指派上都成立，而不仅在月度汇总上成立。
// 锁定指派（历史结果中原样保留的部分）已经携带自己当时核算出的 Hours，
// 不重新计算。
func attachHours(in Input, assignments []model.Assignment) {
	byEmp := map[string][]int{}
	for i, a := range assignments {
		if a.Locked || !a.IsWorking() {
			continue
		}
		byEmp[a.EmployeeID] = append(byEmp[a.EmployeeID], i)
	}
	if len(byEmp) == 0 {
		return
	}

	empByID := map[string]model.Employee{}
	for _, e := range in.Problem.Employees {
		empByID[e.EmployeeID] = e
	}

	for empID, idxs := range byEmp {
		emp, ok := empByID[empID]
		if !ok {
			continue
		}

		byMonth := map[string][]int{}
		var monthOrder []string
		for _, idx := range idxs {
			mk := assignments[idx].Date.MonthKey()
			if _, ok := byMonth[mk]; !ok {
				monthOrder = append(monthOrder, mk)
			}
			byMonth[mk] = append(byMonth[mk], idx)
		}

		for _, mk := range monthOrder {
			monthIdxs := byMonth[mk]
			days := make([]hours.DayHours, len(monthIdxs))
			for i, idx := range monthIdxs {
				days[i] = dayHoursFor(in, assignments[idx])
			}

			daysInMonth := assignments[monthIdxs[0]].Date.DaysInMonth()
			key := model.MonthlyHourLimitsKey{Scheme: emp.Scheme, ProductType: emp.ProductType, EmployeeType: emp.CategoryForC19()}
			row, ok := in.Problem.MonthlyHourLimits.RowFor(key, daysInMonth)
			method := model.MethodWeeklyThreshold
			if ok {
				method = row.HourCalculationMethod
			}

			byDate := make(map[string]model.HourBreakdown, len(days))
			for _, dr := range hours.ComputeDaily(method, emp.Scheme, emp.EnableAPGDD10, row, hours.Ledger{Employee: emp, Days: days}) {
				byDate[dr.Date.String()] = dr.Hours
			}
			for _, idx := range monthIdxs {
				if hb, ok := byDate[assignments[idx].Date.String()]; ok {
					assignments[idx].Hours = hb
				}
			}
		}
	}
}

// dayHoursFor 把一条已排定的 Assignment 换算为 pkg/hours 核算所需的毛工时
// 输入：毛工时取自槽位起止时刻之差，午休扣除取自该指派班次在班次表中
// 登记的 LunchBreak。
func dayHoursFor(in Input, a model.Assignment) hours.DayHours {
	var lunch model.Minutes
	if shift, ok := in.Problem.ShiftByCode(a.ShiftCode); ok {
		lunch = model.MinutesFromHours(shift.LunchBreak)
	}
	return hours.DayHours{
		Date:            a.Date,
		Gross:           model.MinutesFromHours(a.End.Sub(a.Start).Hours()),
		Lunch:           lunch,
		IsPublicHoliday: in.Problem.IsPublicHoliday(a.Date),
	}
}

// mergeLocked 把增量重排中 cutoff_date 之前的锁定指派并入窗口内新求解的
// 指派，标记 Locked，并保持与 buildAssignments 一致的排序。
func mergeLocked(assignments []model.Assignment, locked []model.Assignment) []model.Assignment {
	if len(locked) == 0 {
		return assignments
	}
	for _, a := range locked {
		if !a.IsWorking() {
			continue // 休息日无需呈现为指派，buildOneRoster 对缺失日期默认按休息日处理
		}
		a.Locked = true
		assignments = append(assignments, a)
	}
	sort.Slice(assignments, func(i, j int) bool {
		if !assignments[i].Date.Equal(assignments[j].Date) {
			return assignments[i].Date.Before(assignments[j].Date)
		}
		return assignments[i].EmployeeID < assignments[j].EmployeeID
	})
	return assignments
}

// buildRosters 按员工分组 assignments，补齐规划期内每一天的状态（工作/
// 休息），并用 pkg/hours 核算月度工时汇总。
func buildRosters(in Input, assignments []model.Assignment) []model.EmployeeRoster {
	byEmp := map[string][]model.Assignment{}
	for _, a := range assignments {
		byEmp[a.EmployeeID] = append(byEmp[a.EmployeeID], a)
	}

	var rosters []model.EmployeeRoster
	for _, emp := range in.Problem.Employees {
		rosters = append(rosters, buildOneRoster(in, emp, byEmp[emp.EmployeeID]))
	}

	sort.Slice(rosters, func(i, j int) bool { return rosters[i].EmployeeID < rosters[j].EmployeeID })
	return rosters
}

func buildOneRoster(in Input, emp model.Employee, workDays []model.Assignment) model.EmployeeRoster {
	workedOn := map[string]model.Assignment{}
	for _, a := range workDays {
		workedOn[a.Date.String()] = a
	}

	var days []model.DailyStatus
	for _, d := range in.Problem.PlanningHorizon.Days() {
		if a, ok := workedOn[d.String()]; ok {
			days = append(days, model.DailyStatus{Date: d, Status: model.StatusAssigned, ShiftCode: a.ShiftCode})
			continue
		}
		days = append(days, model.DailyStatus{Date: d, Status: model.StatusOffDay})
	}

	summary := monthlyRosterSummary(in, emp, workDays)
	summary.LongestRun = longestConsecutiveRun(days)
	for _, d := range days {
		if d.Status == model.StatusOffDay {
			summary.OffDays++
		}
	}

	return model.EmployeeRoster{EmployeeID: emp.EmployeeID, Days: days, Summary: summary}
}

// monthlyRosterSummary 按月把 attachHours 已经写回各条 Assignment 的工时
// 拆分累加为合计，并对照月度限额表判断是否超限；核算方法本身只在
// attachHours 里调用一次，这里只做求和，避免跟单条指派的工时各自漂移。
func monthlyRosterSummary(in Input, emp model.Employee, workDays []model.Assignment) model.RosterSummary {
	byMonth := map[string][]model.Assignment{}
	var monthOrder []string
	for _, a := range workDays {
		mk := a.Date.MonthKey()
		if _, ok := byMonth[mk]; !ok {
			monthOrder = append(monthOrder, mk)
		}
		byMonth[mk] = append(byMonth[mk], a)
	}

	var total model.HourBreakdown
	breached := false
	for _, mk := range monthOrder {
		monthAssignments := byMonth[mk]
		var monthTotal model.HourBreakdown
		for _, a := range monthAssignments {
			monthTotal = monthTotal.Add(a.Hours)
		}
		total = total.Add(monthTotal)

		daysInMonth := monthAssignments[0].Date.DaysInMonth()
		key := model.MonthlyHourLimitsKey{Scheme: emp.Scheme, ProductType: emp.ProductType, EmployeeType: emp.CategoryForC19()}
		if row, ok := in.Problem.MonthlyHourLimits.RowFor(key, daysInMonth); ok && row.TotalMaxHours > 0 && monthTotal.PaidHours() > row.TotalMaxHours {
			breached = true
		}
	}

	return model.RosterSummary{
		TotalHours:               total.PaidHours(),
		NormalHours:              total.NormalHours(),
		OvertimeHours:            total.OvertimeHours(),
		PublicHolidayHours:       total.PublicHolidayHours(),
		RestDayPayHours:          total.RestDayPayHours(),
		WorkDays:                 len(workDays),
		MonthlyHourLimitBreached: breached,
	}
}

// longestConsecutiveRun 在已补齐的日状态序列上扫描最长连续 ASSIGNED 游程；
// OffDays 由 buildOneRoster 按同一序列中的 OFF_DAY 天数另行统计。
func longestConsecutiveRun(days []model.DailyStatus) int {
	longest, current := 0, 0
	for _, d := range days {
		if d.Status == model.StatusAssigned {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

func icpmpSummary(trace icpmp.Trace) model.ICPMPSummary {
	total := 0
	offsets := map[string]int{}
	var notes []string
	for _, plan := range trace.Plans {
		total += len(plan.SelectedEmployeeIDs)
		for emp, off := range plan.OffsetsByEmployee {
			offsets[emp] = off
		}
		notes = append(notes, plan.Warnings...)
	}

	noteText := ""
	if len(notes) > 0 {
		noteText = notes[0]
		if len(notes) > 1 {
			noteText = fmt.Sprintf("%s（另有 %d 条提示）", noteText, len(notes)-1)
		}
	}

	return model.ICPMPSummary{
		SelectedEmployeeCount: total,
		OffsetsAssigned:       offsets,
		OverProvisioned:       false,
		Notes:                 noteText,
	}
}

func buildQuality(in Input, assignments []model.Assignment, rosters []model.EmployeeRoster) model.SolutionQuality {
	m := fairness.Analyze(assignments, in.Problem.Employees)

	filled := len(assignments)
	total := filled + unmetCountFromArena(in)
	coverage := fairness.CoverageRatio(total, filled)

	score := 100.0
	if in.ConstraintResult != nil {
		score = in.ConstraintResult.Score
	}

	if runID := in.RunID; runID != "" {
		metrics.SetFairnessGini(runID, m.WorkloadGini)
		metrics.SetCoverageRate(runID, coverage)
		metrics.SetSolutionScore(runID, score)
	}

	return model.SolutionQuality{
		WorkloadGini:         m.WorkloadGini,
		WorkloadStdDev:       m.WorkloadStdDev,
		CoverageRatio:        coverage,
		EfficiencyPercentage: fairness.EfficiencyPercentage(score),
	}
}

func unmetCountFromArena(in Input) int {
	unmet := 0
	for idx := range in.Arena.Slots {
		if _, ok := in.Context.AssignmentForSlot(model.SlotIdx(idx)); !ok {
			unmet++
		}
	}
	return unmet
}
