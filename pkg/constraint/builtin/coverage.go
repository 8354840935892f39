package builtin

import (
	"fmt"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// HeadcountCoverage 实现 C9：每个槽位都应有人填补；未填补的槽位计入违反，
// 用于报告缺口并驱动严格遵从率自动搜索的可行性判断。
type HeadcountCoverage struct {
	*Base
}

// NewHeadcountCoverage 创建 C9 约束。
func NewHeadcountCoverage() *HeadcountCoverage {
	return &HeadcountCoverage{Base: NewBase(constraint.IDHeadcountCoverage, constraint.CategorySoft, 90)}
}

// CanAssign 覆盖约束不限制候选人选择，只在 Evaluate 阶段统计缺口。
func (c *HeadcountCoverage) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	return true, ""
}

func (c *HeadcountCoverage) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail

	for idx := range ctx.Arena.Slots {
		slotIdx := model.SlotIdx(idx)
		slot := ctx.Arena.Slot(slotIdx)
		if _, ok := ctx.AssignmentForSlot(slotIdx); ok {
			continue
		}
		isValid = false
		totalPenalty += c.Weight()
		violations = append(violations, constraint.ViolationDetail{
			ConstraintID: c.ID(),
			SlotID:       slot.SlotID,
			Date:         slot.Date,
			Message:      fmt.Sprintf("槽位 %s（%s %s）未被填补", slot.SlotID, slot.Date.String(), slot.ShiftCode),
			Severity:     "warning",
			Penalty:      c.Weight(),
		})
	}
	return isValid, totalPenalty, violations
}

// GenderMatch 实现 C11：员工性别须满足槽位要求。
type GenderMatch struct {
	*Base
}

// NewGenderMatch 创建 C11 约束。
func NewGenderMatch() *GenderMatch {
	return &GenderMatch{Base: NewBase(constraint.IDGenderMatch, constraint.CategoryHard, 100)}
}

func (c *GenderMatch) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	slot := ctx.Arena.Slot(slotIdx)
	emp := ctx.Arena.Employee(empIdx)
	if !slot.Gender.Matches(emp.Gender) {
		return false, fmt.Sprintf("槽位要求性别 %s，员工性别为 %s", slot.Gender, emp.Gender)
	}
	return true, ""
}

func (c *GenderMatch) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail

	for _, a := range ctx.Assignments {
		if a.Status != model.StatusAssigned {
			continue
		}
		slot := ctx.Arena.Slot(a.Slot)
		emp := ctx.Arena.Employee(a.Emp)
		if !slot.Gender.Matches(emp.Gender) {
			isValid = false
			totalPenalty += c.Weight()
			violations = append(violations, constraint.ViolationDetail{
				ConstraintID: c.ID(),
				EmployeeID:   emp.EmployeeID,
				SlotID:       slot.SlotID,
				Date:         slot.Date,
				Message:      fmt.Sprintf("员工 %s 性别 %s 不满足槽位 %s 要求的 %s", emp.EmployeeID, emp.Gender, slot.SlotID, slot.Gender),
				Severity:     "error",
				Penalty:      c.Weight(),
			})
		}
	}
	return isValid, totalPenalty, violations
}
