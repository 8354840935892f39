// Package incremental 把一次“增量重排”请求（某个 cutoff_date 之后人员或
// 需求发生变化、只需要重新求解月度剩余部分）投影为：一个收窄到
// [solve_from_date, solve_to_date] 的子问题，一份按员工索引的窗口前统计
// 基线，以及窗口前需要原样保留在结果文档中的锁定指派。
package incremental

import (
	"sort"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// Projection 是一次增量投影的产物。
type Projection struct {
	// Baselines 按 employee_id 索引，供换算为 Arena 句柄后喂给约束上下文。
	Baselines map[string]constraint.EmployeeBaseline
	// LockedAssignments 是 cutoff_date 之前、原样保留在最终结果文档中的
	// 历史指派。
	LockedAssignments []model.Assignment
}

// Project 依据 problem.Incremental 收窄求解范围。problem.Incremental 为
// nil 时视为全量求解，原样返回 problem，不做任何投影。
func Project(problem model.Problem) (Projection, model.Problem) {
	block := problem.Incremental
	if block == nil {
		return Projection{}, problem
	}

	locked, baselines := splitAndProject(block.PreviousAssignments, block.CutoffDate, block.SolveFromDate)

	working := problem
	working.PlanningHorizon = model.DateRange{Start: block.SolveFromDate, End: block.SolveToDate}
	working.Employees = adjustEmployeePool(problem.Employees, block.EmployeeChanges)
	working.Incremental = nil

	return Projection{Baselines: baselines, LockedAssignments: locked}, working
}

// ByHandle 把按 employee_id 索引的基线换算为按 Arena 句柄索引，供
// constraint.Context.Baseline 在求解期间查询；Arena 中找不到的员工
// （已离职、已不在求解池中）被丢弃。
func (p Projection) ByHandle(arena *model.Arena) map[model.EmpIdx]constraint.EmployeeBaseline {
	if len(p.Baselines) == 0 {
		return nil
	}
	out := make(map[model.EmpIdx]constraint.EmployeeBaseline, len(p.Baselines))
	for id, b := range p.Baselines {
		if idx, ok := arena.EmployeeHandle(id); ok {
			out[idx] = b
		}
	}
	return out
}

// splitAndProject 把 cutoff_date（含）之前、且早于 solve_from_date 的历史
// 指派留作锁定记录，并从中按员工推导窗口前的周工时、连续工作天数与最后
// 一次上班的统计基线。cutoff_date 与 solve_from_date 之间若存在缺口，落
// 在缺口内的指派只计入基线、不作为锁定记录输出（它们不在新的规划期内）。
func splitAndProject(previous []model.Assignment, cutoff, solveFrom model.Date) ([]model.Assignment, map[string]constraint.EmployeeBaseline) {
	var locked []model.Assignment
	byEmp := map[string][]model.Assignment{}

	for _, a := range previous {
		if a.Date.After(cutoff) {
			continue
		}
		if a.Date.Before(solveFrom) {
			locked = append(locked, a)
		}
		if a.IsWorking() {
			byEmp[a.EmployeeID] = append(byEmp[a.EmployeeID], a)
		}
	}

	baselines := make(map[string]constraint.EmployeeBaseline, len(byEmp))
	for empID, assigns := range byEmp {
		sort.Slice(assigns, func(i, j int) bool { return assigns[i].Date.Before(assigns[j].Date) })

		baseline := constraint.EmployeeBaseline{WeeklyHours: map[string]float64{}}
		for _, a := range assigns {
			baseline.WeeklyHours[a.Date.WeekStart().String()] += a.End.Sub(a.Start).Hours()
		}

		last := assigns[len(assigns)-1]
		baseline.LastWorkDate = last.Date
		baseline.HasLastWorkDate = true
		baseline.LastShiftEnd = last.End

		streak := 1
		for i := len(assigns) - 2; i >= 0; i-- {
			if assigns[i].Date.AddDays(1).Equal(assigns[i+1].Date) {
				streak++
				continue
			}
			break
		}
		baseline.ConsecutiveStreak = streak

		baselines[empID] = baseline
	}

	return locked, baselines
}

// adjustEmployeePool 依据人员变更清单调整求解用的员工池：剔除离职人员、
// 追加新入职人员，为长期请假人员追加一段不可用区间。
func adjustEmployeePool(employees []model.Employee, changes model.EmployeeChanges) []model.Employee {
	departed := make(map[string]bool, len(changes.Departures))
	for _, id := range changes.Departures {
		departed[id] = true
	}

	out := make([]model.Employee, 0, len(employees)+len(changes.NewJoiners))
	for _, e := range employees {
		if departed[e.EmployeeID] {
			continue
		}
		if leave, ok := changes.LongLeaves[e.EmployeeID]; ok {
			e.Unavailable = append(append([]model.DateRange{}, e.Unavailable...), leave)
		}
		out = append(out, e)
	}
	return append(out, changes.NewJoiners...)
}
