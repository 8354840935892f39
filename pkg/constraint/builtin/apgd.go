package builtin

import (
	"fmt"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/hours"
	"github.com/paiban/engine/pkg/model"
)

// APGDD10Override 实现 C17/C19：对标记 APGD-D10 的员工/槽位，月度累计工时
// 须对照 monthly_hour_limits 表中按 Scheme/品类/员工类型分档的行核验，
// 超出 TotalMaxHours 记为违反，加班超出 MaxOvertimeHours 也记为违反。限额表通过 Context.Config["monthly_hour_limits"]
// 传入（由调用方在装配 Context 时设置），未设置时本约束不产生违反。
type APGDD10Override struct {
	*Base
}

// NewAPGDD10Override 创建 C17/C19 约束。
func NewAPGDD10Override() *APGDD10Override {
	return &APGDD10Override{Base: NewBase(constraint.IDAPGDD10Override, constraint.CategoryHard, 100)}
}

func (c *APGDD10Override) limits(ctx *constraint.Context) (model.MonthlyHourLimits, bool) {
	v, ok := ctx.Config["monthly_hour_limits"]
	if !ok {
		return nil, false
	}
	limits, ok := v.(model.MonthlyHourLimits)
	return limits, ok
}

// CanAssign 不做候选级短路：月度累计只能在完整解上核算。
func (c *APGDD10Override) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	return true, ""
}

func (c *APGDD10Override) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail

	limits, ok := c.limits(ctx)
	if !ok {
		return isValid, totalPenalty, violations
	}

	byEmpMonth := map[model.EmpIdx]map[string][]hours.DayHours{}
	for _, a := range ctx.Assignments {
		if a.Status != model.StatusAssigned {
			continue
		}
		emp := ctx.Arena.Employee(a.Emp)
		if !emp.EnableAPGDD10 {
			continue
		}
		slot := ctx.Arena.Slot(a.Slot)
		monthKey := slot.Date.MonthKey()
		if byEmpMonth[a.Emp] == nil {
			byEmpMonth[a.Emp] = map[string][]hours.DayHours{}
		}
		byEmpMonth[a.Emp][monthKey] = append(byEmpMonth[a.Emp][monthKey], hours.DayHours{
			Date:  slot.Date,
			Gross: model.MinutesFromHours(slot.End.Sub(slot.Start).Hours()),
		})
	}

	for empIdx, byMonth := range byEmpMonth {
		emp := ctx.Arena.Employee(empIdx)
		for monthKey, days := range byMonth {
			daysInMonth := days[0].Date.DaysInMonth()
			key := model.MonthlyHourLimitsKey{
				Scheme:      emp.Scheme,
				ProductType: emp.ProductType,
				EmployeeType: emp.CategoryForC19(),
			}
			row, ok := limits.RowFor(key, daysInMonth)
			if !ok || row.TotalMaxHours <= 0 {
				continue
			}
			ledger := hours.Ledger{Employee: *emp, Days: days}
			breakdown := hours.Compute(model.MethodMonthlyCumulative, emp.Scheme, true, row, ledger)
			if total := breakdown.PaidHours(); total > row.TotalMaxHours {
				isValid = false
				penalty := c.Weight()
				totalPenalty += penalty
				violations = append(violations, constraint.ViolationDetail{
					ConstraintID: c.ID(),
					EmployeeID:   emp.EmployeeID,
					Message: fmt.Sprintf("员工 %s 在 %s 的 APGD-D10 月度总工时 %.1f 小时，超过上限 %.1f 小时",
						emp.EmployeeID, monthKey, total, row.TotalMaxHours),
					Severity: "error",
					Penalty:  penalty,
				})
			}
			if breakdown.OvertimeHours() > row.MaxOvertimeHours {
				isValid = false
				penalty := c.Weight()
				totalPenalty += penalty
				violations = append(violations, constraint.ViolationDetail{
					ConstraintID: c.ID(),
					EmployeeID:   emp.EmployeeID,
					Message: fmt.Sprintf("员工 %s 在 %s 的 APGD-D10 加班 %.1f 小时，超过允许的 %.1f 小时",
						emp.EmployeeID, monthKey, breakdown.OvertimeHours(), row.MaxOvertimeHours),
					Severity: "error",
					Penalty:  penalty,
				})
			}
		}
	}
	return isValid, totalPenalty, violations
}
