package builtin

import (
	"fmt"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// ConsecutiveDaysCap 实现 C3：连续工作天数不得超过 Scheme（及 APGD-D10）上限。
type ConsecutiveDaysCap struct {
	*Base
}

// NewConsecutiveDaysCap 创建 C3 约束。
func NewConsecutiveDaysCap() *ConsecutiveDaysCap {
	return &ConsecutiveDaysCap{Base: NewBase(constraint.IDConsecutiveDaysCap, constraint.CategoryHard, 100)}
}

func (c *ConsecutiveDaysCap) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	slot := ctx.Arena.Slot(slotIdx)
	emp := ctx.Arena.Employee(empIdx)

	consecutive := ctx.EmployeeConsecutiveDays(empIdx, slot.Date)
	limit := emp.Scheme.ConsecutiveDaysCap(emp.EnableAPGDD10 || slot.EnableAPGDD10)

	if consecutive > limit {
		return false, fmt.Sprintf("连续工作 %d 天将超过上限 %d 天", consecutive, limit)
	}
	return true, ""
}

func (c *ConsecutiveDaysCap) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail

	seen := map[model.EmpIdx]bool{}
	for _, a := range ctx.Assignments {
		if a.Status != model.StatusAssigned || seen[a.Emp] {
			continue
		}
		seen[a.Emp] = true

		emp := ctx.Arena.Employee(a.Emp)
		limit := emp.Scheme.ConsecutiveDaysCap(emp.EnableAPGDD10)

		longest := longestConsecutiveRun(ctx, a.Emp)
		if longest > limit {
			isValid = false
			penalty := c.Weight() * (longest - limit)
			totalPenalty += penalty
			violations = append(violations, constraint.ViolationDetail{
				ConstraintID: c.ID(),
				EmployeeID:   emp.EmployeeID,
				Message:      fmt.Sprintf("员工 %s 连续工作 %d 天，超过上限 %d 天", emp.EmployeeID, longest, limit),
				Severity:     "error",
				Penalty:      penalty,
			})
		}
	}
	return isValid, totalPenalty, violations
}

// longestConsecutiveRun 扫描员工全部已指派日期，返回最长连续运行长度。
func longestConsecutiveRun(ctx *constraint.Context, empIdx model.EmpIdx) int {
	dates := map[string]model.Date{}
	for _, a := range ctx.EmployeeAssignments(empIdx) {
		if a.Status != model.StatusAssigned {
			continue
		}
		d := ctx.Arena.Slot(a.Slot).Date
		dates[d.String()] = d
	}
	if len(dates) == 0 {
		return 0
	}

	visited := map[string]bool{}
	longest := 0
	for key, d := range dates {
		if visited[key] {
			continue
		}
		run := 1
		visited[key] = true
		for next := d.AddDays(1); containsDate(dates, next); next = next.AddDays(1) {
			visited[next.String()] = true
			run++
		}
		for prev := d.AddDays(-1); containsDate(dates, prev); prev = prev.AddDays(-1) {
			visited[prev.String()] = true
			run++
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func containsDate(dates map[string]model.Date, d model.Date) bool {
	_, ok := dates[d.String()]
	return ok
}

// MinRestBetweenShifts 实现 C4/C7：相邻班次之间必须满足最小休息时间，
// 同日内的两头班适用 Scheme P 的更短间隔。
type MinRestBetweenShifts struct {
	*Base
}

// NewMinRestBetweenShifts 创建 C4/C7 约束。
func NewMinRestBetweenShifts() *MinRestBetweenShifts {
	return &MinRestBetweenShifts{Base: NewBase(constraint.IDMinRestBetweenShifts, constraint.CategoryHard, 100)}
}

func (c *MinRestBetweenShifts) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	slot := ctx.Arena.Slot(slotIdx)
	emp := ctx.Arena.Employee(empIdx)

	for _, a := range ctx.EmployeeAssignments(empIdx) {
		if a.Status != model.StatusAssigned {
			continue
		}
		other := ctx.Arena.Slot(a.Slot)
		if other.Overlaps(*slot) {
			return false, "与已排班次时间重叠"
		}

		sameDay := other.Date.Equal(slot.Date)
		minRest := emp.Scheme.MinRestHours(emp.EnableAPGDD10 || slot.EnableAPGDD10, sameDay)

		var gap float64
		if slot.Start.After(other.End) {
			gap = slot.Start.Sub(other.End).Hours()
		} else {
			gap = other.Start.Sub(slot.End).Hours()
		}
		if gap < minRest {
			return false, fmt.Sprintf("与相邻班次间隔仅 %.1f 小时，少于要求的 %.1f 小时", gap, minRest)
		}
	}

	if baselineEnd, ok := ctx.BaselineLastShiftEnd(empIdx); ok && slot.Start.After(baselineEnd) {
		minRest := emp.Scheme.MinRestHours(emp.EnableAPGDD10 || slot.EnableAPGDD10, false)
		gap := slot.Start.Sub(baselineEnd).Hours()
		if gap < minRest {
			return false, fmt.Sprintf("与增量基线中最后一次锁定班次间隔仅 %.1f 小时，少于要求的 %.1f 小时", gap, minRest)
		}
	}
	return true, ""
}

func (c *MinRestBetweenShifts) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail

	seen := map[model.EmpIdx]bool{}
	for _, a := range ctx.Assignments {
		if a.Status != model.StatusAssigned || seen[a.Emp] {
			continue
		}
		seen[a.Emp] = true
		emp := ctx.Arena.Employee(a.Emp)

		assignments := ctx.EmployeeAssignments(a.Emp)
		for i := 0; i < len(assignments); i++ {
			for j := i + 1; j < len(assignments); j++ {
				si := ctx.Arena.Slot(assignments[i].Slot)
				sj := ctx.Arena.Slot(assignments[j].Slot)
				first, second := si, sj
				if second.Start.Before(first.Start) {
					first, second = second, first
				}
				if first.Overlaps(*second) {
					continue
				}
				gap := second.Start.Sub(first.End).Hours()
				sameDay := first.Date.Equal(second.Date)
				minRest := emp.Scheme.MinRestHours(emp.EnableAPGDD10, sameDay)
				if gap >= 0 && gap < minRest {
					isValid = false
					penalty := c.Weight() * int(minRest-gap+0.5)
					totalPenalty += penalty
					violations = append(violations, constraint.ViolationDetail{
						ConstraintID: c.ID(),
						EmployeeID:   emp.EmployeeID,
						Date:         second.Date,
						Message:      fmt.Sprintf("员工 %s 班次间隔仅 %.1f 小时，少于要求的 %.1f 小时", emp.EmployeeID, gap, minRest),
						Severity:     "error",
						Penalty:      penalty,
					})
				}
			}
		}
	}
	return isValid, totalPenalty, violations
}
