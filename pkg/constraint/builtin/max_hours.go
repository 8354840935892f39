package builtin

import (
	"fmt"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// MaxHoursPerDay 实现 C1：单日净工时不得超过该员工 Scheme 的单日上限。
type MaxHoursPerDay struct {
	*Base
}

// NewMaxHoursPerDay 创建 C1 约束。
func NewMaxHoursPerDay() *MaxHoursPerDay {
	return &MaxHoursPerDay{Base: NewBase(constraint.IDMaxHoursPerDay, constraint.CategoryHard, 100)}
}

func (c *MaxHoursPerDay) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	slot := ctx.Arena.Slot(slotIdx)
	emp := ctx.Arena.Employee(empIdx)

	netHours := slot.End.Sub(slot.Start).Hours()
	existing := ctx.EmployeeHoursOnDate(empIdx, slot.Date)
	dailyCap := emp.Scheme.DailyHoursCap()

	if existing+netHours > dailyCap {
		return false, fmt.Sprintf("单日工时 %.1f 小时将超过上限 %.1f 小时", existing+netHours, dailyCap)
	}
	return true, ""
}

func (c *MaxHoursPerDay) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail

	byEmpDate := map[model.EmpIdx]map[string]float64{}
	for _, a := range ctx.Assignments {
		if a.Status != model.StatusAssigned {
			continue
		}
		slot := ctx.Arena.Slot(a.Slot)
		if byEmpDate[a.Emp] == nil {
			byEmpDate[a.Emp] = map[string]float64{}
		}
		byEmpDate[a.Emp][slot.Date.String()] += slot.End.Sub(slot.Start).Hours()
	}

	for empIdx, byDate := range byEmpDate {
		emp := ctx.Arena.Employee(empIdx)
		dailyCap := emp.Scheme.DailyHoursCap()
		for dateStr, hours := range byDate {
			if hours > dailyCap {
				isValid = false
				penalty := c.Weight() * int(hours-dailyCap+0.5)
				totalPenalty += penalty
				violations = append(violations, constraint.ViolationDetail{
					ConstraintID: c.ID(),
					EmployeeID:   emp.EmployeeID,
					Message:      fmt.Sprintf("员工 %s 在 %s 工作 %.1f 小时，超过单日上限 %.1f 小时", emp.EmployeeID, dateStr, hours, dailyCap),
					Severity:     "error",
					Penalty:      penalty,
				})
			}
		}
	}
	return isValid, totalPenalty, violations
}

// WeeklyHourCap 实现 C2/C6：按 Scheme 的周工时上限加计划外加班容差。
type WeeklyHourCap struct {
	*Base
}

// NewWeeklyHourCap 创建 C2/C6 约束。maxOvertimeHours 是允许超出周上限的加班
// 容差，超过该容差才判为违反（纯粹超出上限但在容差内记为加班而非违规）。
func NewWeeklyHourCap(maxOvertimeHours float64) *WeeklyHourCap {
	b := NewBase(constraint.IDWeeklyHourCap, constraint.CategoryHard, 100)
	b.config["max_overtime_hours"] = maxOvertimeHours
	return &WeeklyHourCap{Base: b}
}

func (c *WeeklyHourCap) overtimeAllowance() float64 {
	return c.ConfigFloat("max_overtime_hours", 12.0)
}

func (c *WeeklyHourCap) weekTotal(ctx *constraint.Context, empIdx model.EmpIdx, weekStart model.Date) float64 {
	total := ctx.BaselineWeeklyHours(empIdx, weekStart)
	for _, a := range ctx.EmployeeAssignments(empIdx) {
		if a.Status != model.StatusAssigned {
			continue
		}
		slot := ctx.Arena.Slot(a.Slot)
		if slot.Date.WeekStart().Equal(weekStart) {
			total += slot.End.Sub(slot.Start).Hours()
		}
	}
	return total
}

func (c *WeeklyHourCap) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	slot := ctx.Arena.Slot(slotIdx)
	emp := ctx.Arena.Employee(empIdx)
	netHours := slot.End.Sub(slot.Start).Hours()

	weekStart := slot.Date.WeekStart()
	existing := c.weekTotal(ctx, empIdx, weekStart)
	weeklyCap := emp.Scheme.WeeklyHourCap(netHours) + c.overtimeAllowance()

	if existing+netHours > weeklyCap {
		return false, fmt.Sprintf("本周工时 %.1f 小时将超过上限 %.1f 小时（含加班容差）", existing+netHours, weeklyCap)
	}
	return true, ""
}

func (c *WeeklyHourCap) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail

	type key struct {
		emp  model.EmpIdx
		week string
	}
	totals := map[key]float64{}
	longest := map[key]float64{}
	for _, a := range ctx.Assignments {
		if a.Status != model.StatusAssigned {
			continue
		}
		slot := ctx.Arena.Slot(a.Slot)
		k := key{emp: a.Emp, week: slot.Date.WeekStart().String()}
		h := slot.End.Sub(slot.Start).Hours()
		totals[k] += h
		if h > longest[k] {
			longest[k] = h
		}
	}

	for k, total := range totals {
		emp := ctx.Arena.Employee(k.emp)
		total += ctx.BaselineWeeklyHoursByWeekKey(k.emp, k.week)
		weeklyCap := emp.Scheme.WeeklyHourCap(longest[k]) + c.overtimeAllowance()
		if total > weeklyCap {
			isValid = false
			penalty := c.Weight() * int(total-weeklyCap+0.5)
			totalPenalty += penalty
			violations = append(violations, constraint.ViolationDetail{
				ConstraintID: c.ID(),
				EmployeeID:   emp.EmployeeID,
				Message:      fmt.Sprintf("员工 %s 在周 %s 工作 %.1f 小时，超过上限 %.1f 小时", emp.EmployeeID, k.week, total, weeklyCap),
				Severity:     "error",
				Penalty:      penalty,
			})
		}
	}
	return isValid, totalPenalty, violations
}
